package errors

import (
	"testing"
)

func TestValidateModuleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "gc", false},
		{"valid dotted", "umqtt.simple", false},
		{"valid slashed", "umqtt/simple", false},
		{"valid underscore", "_thread", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModuleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"modules.json", false},
		{"modulelist.done", false},
		{"", true},
		{"a/b.json", true},
		{"a\\b.json", true},
		{".hidden", true},
	}

	for _, tt := range tests {
		err := ValidateFileName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"collect", false},
		{"_private", false},
		{"PIN_2", false},
		{"Ünïcode", false},
		{"2fast", true},
		{"", true},
		{"has space", true},
		{"dash-name", true},
		{"class", true},
		{"None", true},
	}

	for _, tt := range tests {
		err := ValidateIdentifier(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
