package auth

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Error("hash should not equal the plaintext password")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword() = false for the correct password")
	}
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("password-one")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if CheckPassword("password-two", hash) {
		t.Error("CheckPassword() = true for a wrong password")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	// bcrypt形式でない文字列はエラー扱い（false）になること
	if CheckPassword("whatever", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() = true for an invalid hash")
	}
}

func TestHashPassword_DifferentSaltsPerCall(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}
