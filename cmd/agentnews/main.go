package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentnews/agentnews"
)

var rootCmd = &cobra.Command{
	Use:           "agentnews",
	Short:         "News scraping and newsletter delivery pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the subscription web endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requireSMTP(cfg); err != nil {
			return err
		}
		return runServe(cfg)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Scrape the latest articles and send the newsletter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requireSMTP(cfg); err != nil {
			return err
		}
		return runSend(cfg)
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <email>",
	Short: "Subscribe an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store agentnews.SubscriptionService) error {
			isNew, err := store.Add(args[0])
			if err != nil {
				return err
			}
			if isNew {
				fmt.Printf("Subscribed %s\n", args[0])
			} else {
				fmt.Printf("Resubscribed %s\n", args[0])
			}
			return nil
		})
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe <email>",
	Short: "Unsubscribe an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store agentnews.SubscriptionService) error {
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("Unsubscribed %s\n", args[0])
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store agentnews.SubscriptionService) error {
			subscribers, err := store.ActiveSubscribers()
			if err != nil {
				return err
			}
			fmt.Printf("Current subscribers (%d):\n", len(subscribers))
			for i, sub := range subscribers {
				fmt.Printf("%3d. %s\n", i+1, sub.Email)
			}
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Subscribe every address in a one-address-per-line file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emails, err := agentnews.LoadSubscriberFile(args[0])
		if err != nil {
			return err
		}
		return withStore(func(store agentnews.SubscriptionService) error {
			var added int
			for _, email := range emails {
				isNew, err := store.Add(email)
				if err != nil {
					return err
				}
				if isNew {
					added++
				}
			}
			fmt.Printf("Imported %d addresses (%d new)\n", len(emails), added)
			return nil
		})
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process unsubscribe requests from the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		// TODO: read the configured mailbox over IMAP and unsubscribe
		// senders of "UNSUBSCRIBE" replies.
		log.Println("automatic email processing not implemented yet")
		log.Println("for now, use: agentnews unsubscribe <email>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, sendCmd, subscribeCmd, unsubscribeCmd, listCmd, importCmd, processCmd)
}

func loadConfig() (*agentnews.Config, error) {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	// The config file is optional; env-only deployments have none.
	_ = viper.ReadInConfig()

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.path", "subscribers.db")
	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("newsletter.product.name", "AgentNews")
	viper.SetDefault("newsletter.baseurl", "http://localhost:8080")
	viper.SetDefault("newsletter.subject.digest", "AgentNews Weekly")
	viper.SetDefault("newsletter.subject.welcome", "Welcome to AgentNews")
	viper.SetDefault("scrape.maxarticles", 5)

	_ = viper.BindEnv("db.url", "DATABASE_URL")
	_ = viper.BindEnv("smtp.username", "GMAIL_USER")
	_ = viper.BindEnv("smtp.password", "GMAIL_APP_PASSWORD")
	_ = viper.BindEnv("newsletter.baseurl", "NEWSLETTER_BASE_URL")
	_ = viper.BindEnv("sentry.dsn", "SENTRY_DSN")

	var cfg *agentnews.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	if cfg.Newsletter.From == "" {
		cfg.Newsletter.From = cfg.SMTP.Username
	}

	return cfg, nil
}

// requireSMTP is the startup gate for commands that send mail.
func requireSMTP(cfg *agentnews.Config) error {
	if cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
		return fmt.Errorf("mail credentials not found: set GMAIL_USER and GMAIL_APP_PASSWORD")
	}
	return nil
}

func initSentry(cfg *agentnews.Config) {
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
		log.Printf("sentry.Init: %v", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
	sentry.Flush(2 * time.Second)
}
