package capture

import (
	"github.com/tidwall/gjson"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// Strategy finds account records in one known location of a response
// payload. Strategies are pure: the same payload yields the same accounts.
type Strategy func(payload gjson.Result) []model.Account

// DefaultStrategies are the payload shapes that carry followed accounts, in
// the order they are probed.
var DefaultStrategies = []Strategy{
	ObjectAt("user"),
	ListAt("users"),
	ListAt("data.users"),
}

// ObjectAt returns a strategy reading a single account object at path.
func ObjectAt(path string) Strategy {
	return func(payload gjson.Result) []model.Account {
		if a, ok := accountFrom(payload.Get(path)); ok {
			return []model.Account{a}
		}
		return nil
	}
}

// ListAt returns a strategy reading an array of account objects at path.
func ListAt(path string) Strategy {
	return func(payload gjson.Result) []model.Account {
		list := payload.Get(path)
		if !list.IsArray() {
			return nil
		}
		var out []model.Account
		list.ForEach(func(_, v gjson.Result) bool {
			if a, ok := accountFrom(v); ok {
				out = append(out, a)
			}
			return true
		})
		return out
	}
}

// accountFrom normalizes an account-shaped object. full_name, username and id
// must all be present; id and username must be non-empty.
func accountFrom(v gjson.Result) (model.Account, bool) {
	if !v.IsObject() {
		return model.Account{}, false
	}
	fullName, username, id := v.Get("full_name"), v.Get("username"), v.Get("id")
	if !fullName.Exists() || !username.Exists() || !id.Exists() {
		return model.Account{}, false
	}
	a := model.Account{
		FullName: fullName.String(),
		Username: username.String(),
		ID:       id.String(),
	}
	if a.ID == "" || a.Username == "" {
		return model.Account{}, false
	}
	return a, true
}

// probe runs every strategy over payload and concatenates the results.
func probe(strategies []Strategy, payload gjson.Result) []model.Account {
	if !payload.IsObject() {
		return nil
	}
	var out []model.Account
	for _, s := range strategies {
		out = append(out, s(payload)...)
	}
	return out
}
