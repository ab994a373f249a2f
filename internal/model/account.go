package model

// Account is a social-network account as it appears in captured traffic.
type Account struct {
	FullName string `json:"full_name"`
	Username string `json:"username" validate:"required"`
	ID       string `json:"id" validate:"required"`
}

// DedupeAccounts returns accounts with one entry per ID. The attributes of the
// last occurrence win; the position is that of the first occurrence.
func DedupeAccounts(accounts []Account) []Account {
	if len(accounts) == 0 {
		return nil
	}
	index := make(map[string]int, len(accounts))
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if i, ok := index[a.ID]; ok {
			out[i] = a
			continue
		}
		index[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}
