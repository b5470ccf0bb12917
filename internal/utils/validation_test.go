package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "user@example.com", false},
		{"valid with plus", "user+tag@example.com", false},
		{"valid with dots", "first.last@sub.example.co.uk", false},
		{"empty", "", true},
		{"missing at", "userexample.com", true},
		{"missing domain", "user@", true},
		{"missing tld", "user@example", true},
		{"spaces only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "secret1", false},
		{"exactly six", "sixsix", false},
		{"empty", "", true},
		{"too short", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Alice"); err != nil {
		t.Errorf("ValidateName(Alice) error = %v", err)
	}
	if err := ValidateName(""); err == nil {
		t.Error("ValidateName(\"\") succeeded, want error")
	}
	if err := ValidateName("   "); err == nil {
		t.Error("ValidateName(blank) succeeded, want error")
	}
}

func TestValidateAvatarURL(t *testing.T) {
	tests := []struct {
		name    string
		avatar  string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"https url", "https://cdn.example.com/a.png", false},
		{"http url", "http://example.com/a.png", false},
		{"relative path", "/images/a.png", true},
		{"other scheme", "ftp://example.com/a.png", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatarURL(tt.avatar)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAvatarURL(%q) error = %v, wantErr %v", tt.avatar, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "email", Message: "invalid email format"}
	if got := err.Error(); got != "email: invalid email format" {
		t.Errorf("Error() = %q", got)
	}
}
