// Package catalog owns the persisted song list and the read-side queries
// over it. The catalog is an append-only ordered list; every read loads
// the whole list and every write replaces it wholesale.
package catalog

// Song is a single catalog record. Name doubles as the lookup key for
// selection callbacks; duplicate names resolve to the first record in
// catalog order.
type Song struct {
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
	Audio    string `json:"audio" db:"audio"`
	Image    string `json:"image" db:"image"`
	Text     string `json:"text" db:"text"`
}
