// Package accounts loads the known-accounts reference list used to resolve
// the owner of a capture.
package accounts

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// Directory indexes known accounts by lower-cased username. The zero value
// is an empty directory.
type Directory struct {
	byUsername map[string]model.Account
}

// Load reads a reference file of the form {"users":[{"id":..,"username":..}]}.
// Ids may be JSON strings or numbers. Records without an id or username are
// ignored; when a username repeats, the first record wins.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read known accounts: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse builds a Directory from the raw reference document.
func Parse(data []byte) (*Directory, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: known accounts file is not valid JSON", model.ErrParse)
	}
	users := gjson.GetBytes(data, "users")
	if !users.IsArray() {
		return nil, fmt.Errorf("%w: known accounts file has no users array", model.ErrParse)
	}

	d := &Directory{byUsername: make(map[string]model.Account)}
	users.ForEach(func(_, u gjson.Result) bool {
		id, username := u.Get("id"), u.Get("username")
		if !scalar(id) || !scalar(username) || username.String() == "" {
			return true
		}
		key := strings.ToLower(username.String())
		if _, dup := d.byUsername[key]; dup {
			return true
		}
		d.byUsername[key] = model.Account{
			ID:       id.String(),
			Username: username.String(),
			FullName: u.Get("full_name").String(),
		}
		return true
	})
	return d, nil
}

// Lookup finds an account by case-insensitive exact username match.
func (d *Directory) Lookup(username string) (model.Account, bool) {
	a, ok := d.byUsername[strings.ToLower(username)]
	return a, ok
}

// Len returns the number of indexed accounts.
func (d *Directory) Len() int {
	return len(d.byUsername)
}

func scalar(r gjson.Result) bool {
	return r.Type == gjson.String || r.Type == gjson.Number
}
