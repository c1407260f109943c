package agentnews

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadSubscriberFile reads the legacy offline subscriber list: one email
// address per line, no header row. Lines without an "@" are ignored.
func LoadSubscriberFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open subscriber file %s", path)
	}
	defer f.Close()

	var emails []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		email := strings.TrimSpace(scanner.Text())
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		emails = append(emails, email)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read subscriber file %s", path)
	}

	return emails, nil
}
