package domain

import "strings"

const identifierSep = "_"

// Key identifies the notification of one kind for one (item, owner) pair.
type Key struct {
	Kind     Kind
	ItemName string
	Owner    string
}

// Identifier encodes k as "{kind}_{itemName}_{owner}". Orphan detection on
// entries without a payload depends on this exact format.
func (k Key) Identifier() string {
	return string(k.Kind) + identifierSep + k.ItemName + identifierSep + k.Owner
}

// Matches reports whether k belongs to itemName and, when owner is non-empty,
// to that owner.
func (k Key) Matches(itemName, owner string) bool {
	if k.ItemName != itemName {
		return false
	}
	return owner == "" || k.Owner == owner
}

// ParseIdentifier recovers a Key from an identifier. The first token is the
// kind, the last token the owner, and everything in between the item name,
// which may itself contain underscores. Foreign identifiers return false.
func ParseIdentifier(id string) (Key, bool) {
	parts := strings.Split(id, identifierSep)
	if len(parts) < 3 {
		return Key{}, false
	}
	kind := Kind(parts[0])
	if !kind.Valid() {
		return Key{}, false
	}
	owner := parts[len(parts)-1]
	name := strings.Join(parts[1:len(parts)-1], identifierSep)
	if name == "" || owner == "" {
		return Key{}, false
	}
	return Key{Kind: kind, ItemName: name, Owner: owner}, true
}
