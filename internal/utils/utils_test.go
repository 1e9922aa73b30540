package utils

import "testing"

func TestNormalizeRUT(t *testing.T) {
	cases := map[string]string{
		"12.345.678-k": "12345678-K",
		" 12345678-K ": "12345678-K",
		"12 345 678-9": "12345678-9",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeRUT(in); got != want {
			t.Fatalf("NormalizeRUT(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsJpeg(t *testing.T) {
	jpegHead := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

	if !IsJpeg("image/jpeg", jpegHead) {
		t.Fatalf("valid jpeg rejected")
	}
	if !IsJpeg("image/jpeg; charset=binary", jpegHead) {
		t.Fatalf("media type parameters must be ignored")
	}
	if !IsJpeg("IMAGE/JPG", jpegHead) {
		t.Fatalf("declared type must be case-insensitive")
	}
	if IsJpeg("text/plain", jpegHead) {
		t.Fatalf("wrong declared type accepted")
	}
	if IsJpeg("image/jpeg", []byte("GIF89a...")) {
		t.Fatalf("forged declared type accepted")
	}
	if IsJpeg("image/jpeg", nil) {
		t.Fatalf("empty payload accepted")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secreto123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secreto123" {
		t.Fatalf("password stored in the clear")
	}
	if !CheckPassword(hash, "secreto123") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "otra") {
		t.Fatalf("wrong password accepted")
	}
}
