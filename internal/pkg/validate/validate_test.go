package validate

import "testing"

func TestEmail(t *testing.T) {
	valid := []string{"a@b.com", "clinic.user@hospital.example.org", "x+tag@y.co"}
	for _, v := range valid {
		if !Email(v) {
			t.Fatalf("expected %q to be a valid email", v)
		}
	}

	invalid := []string{"", "plain", "no-at.example.com", "a@b", "a b@c.com", "@x.com"}
	for _, v := range invalid {
		if Email(v) {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
}

func TestPassword(t *testing.T) {
	valid := []string{"passw0rd", "A1bcdefg", "longpassword9"}
	for _, v := range valid {
		if !Password(v) {
			t.Fatalf("expected %q to satisfy the policy", v)
		}
	}

	invalid := []string{"", "short1a", "onlyletters", "12345678"}
	for _, v := range invalid {
		if Password(v) {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
}

func TestRequired(t *testing.T) {
	if Required("   ") || Required("") {
		t.Fatal("blank values must not pass Required")
	}
	if !Required("x") {
		t.Fatal("non-blank value must pass Required")
	}
}
