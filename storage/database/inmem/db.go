package inmemdb

import (
	"sync"

	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
)

// DB is an in-memory store with the same repository contracts as the
// Postgres implementation. It backs tests and local tinkering.
type DB struct {
	user *userTable
	year *yearTable
	card *cardTable
}

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}
	yearTable struct {
		mutex sync.RWMutex
		table map[string]*greeting.Year
	}
	cardTable struct {
		mutex sync.RWMutex
		table map[string]*greeting.Card
	}
)

func NewDB() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		year: &yearTable{table: make(map[string]*greeting.Year)},
		card: &cardTable{table: make(map[string]*greeting.Card)},
	}
}
