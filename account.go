package kinesiscount

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Account is a colon separated hierarchical account name, e.g.
// "Assets:Kinesis:KAU:GBP".
type Account string

// AccountSep separates account components.
const AccountSep = ":"

// accountTypes are the valid root components.
var accountTypes = []string{"Assets", "Liabilities", "Equity", "Income", "Expenses"}

// JoinAccount appends components to root. Empty components are ignored.
func JoinAccount(root Account, parts ...string) Account {
	components := make([]string, 0, len(parts)+1)
	if root != "" {
		components = append(components, string(root))
	}
	for _, p := range parts {
		if p != "" {
			components = append(components, p)
		}
	}
	return Account(strings.Join(components, AccountSep))
}

// Components returns the account split on the separator.
func (a Account) Components() []string { return strings.Split(string(a), AccountSep) }

// Type returns the root component, e.g. "Assets".
func (a Account) Type() string { return a.Components()[0] }

// Validate checks the account is a well formed ledger account name: a known
// root type followed by at least one component, every component starting
// with an uppercase letter or a digit and made of letters, digits and dashes.
func (a Account) Validate() error {
	if a == "" {
		return errors.New("account name is empty")
	}
	components := a.Components()
	if !isAccountType(components[0]) {
		return fmt.Errorf("account %q: root must be one of %s", a, strings.Join(accountTypes, ", "))
	}
	if len(components) < 2 {
		return fmt.Errorf("account %q: at least one component is required after the root", a)
	}
	for _, c := range components[1:] {
		if err := validComponent(c); err != nil {
			return fmt.Errorf("account %q: %w", a, err)
		}
	}
	return nil
}

func isAccountType(s string) bool {
	for _, t := range accountTypes {
		if s == t {
			return true
		}
	}
	return false
}

func validComponent(c string) error {
	if c == "" {
		return errors.New("empty component")
	}
	for i, r := range c {
		switch {
		case i == 0 && !unicode.IsUpper(r) && !unicode.IsDigit(r):
			return fmt.Errorf("component %q must start with an uppercase letter or a digit", c)
		case !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-':
			return fmt.Errorf("component %q contains invalid character %q", c, r)
		}
	}
	return nil
}
