package kinesiscount

import "testing"

func TestJoinAccount(t *testing.T) {
	tests := []struct {
		root  Account
		parts []string
		want  Account
	}{
		{"Assets:Kinesis", []string{"KAU", "GBP"}, "Assets:Kinesis:KAU:GBP"},
		{"Expenses:Kinesis", []string{"KAU", "Transaction-Fee"}, "Expenses:Kinesis:KAU:Transaction-Fee"},
		{"Income:M", []string{"KAG", "Yields"}, "Income:M:KAG:Yields"},
		{"Assets:Kinesis", []string{"", "GBP"}, "Assets:Kinesis:GBP"},
		{"", []string{"Assets", "Cash"}, "Assets:Cash"},
	}
	for _, tt := range tests {
		if got := JoinAccount(tt.root, tt.parts...); got != tt.want {
			t.Errorf("JoinAccount(%q, %q) = %q, want %q", tt.root, tt.parts, got, tt.want)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		account Account
		valid   bool
	}{
		{"Assets:Kinesis:KAU:GBP", true},
		{"Expenses:Kinesis:KAU:Transaction-Fee", true},
		{"Income:M:KVT:Yields", true},
		{"Equity:2023", true},
		{"", false},
		{"Assets", false},
		{"Kinesis:GBP", false},
		{"Assets:kinesis", false},
		{"Assets::GBP", false},
		{"Assets:Kinesis GBP", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.account), func(t *testing.T) {
			err := tt.account.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate(%q) = %v, want valid %v", tt.account, err, tt.valid)
			}
		})
	}
}

func TestAccountType(t *testing.T) {
	if got := Account("Expenses:Kinesis:KAU").Type(); got != "Expenses" {
		t.Errorf("Type() = %q, want Expenses", got)
	}
}
