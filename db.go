package agentnews

type Database interface {
	Open() error
	Close() error
}
