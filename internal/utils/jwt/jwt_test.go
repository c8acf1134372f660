package jwt

import "testing"

func TestCreateAndExtract(t *testing.T) {
	token, err := CreateToken("42", "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	userID, err := ExtractUserIDFromToken(token, "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if userID != "42" {
		t.Fatalf("Expected user 42, got %s", userID)
	}

	if _, err := ExtractUserIDFromToken(token, "other"); err == nil {
		t.Fatal("Expected wrong secret to be rejected")
	}
	if _, err := ExtractUserIDFromToken("garbage", "secret"); err == nil {
		t.Fatal("Expected malformed token to be rejected")
	}
}
