package config

import "testing"

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"tmp/in/a.json", "tmp_in_a.json"},
		{"r.zip:sub/b.json", "r.zip_sub_b.json"},
		{"..hidden", "hidden"},
		{" . x", "x"},
		{"tab\tname\n", "tabname"},
		{"", unnamed},
		{"...", unnamed},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
