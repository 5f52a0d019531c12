package service

import (
	"encoding/base64"
	"testing"
)

func TestQrCodeNew(t *testing.T) {
	s := NewQrCodesService()

	qr, err := s.New("bitcoin:bc1qtest?amount=0.0042")
	if err != nil {
		t.Fatal(err)
	}
	if qr == "" {
		t.Fatal("empty qr code")
	}

	png, err := base64.RawStdEncoding.DecodeString(qr)
	if err != nil {
		t.Fatal(err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatal("qr code is not a png")
	}
}

func TestQrCodeFindOrNew(t *testing.T) {
	s := NewQrCodesService()

	const uri = "stacks:ST2TEST?amount=12.5"

	first, err := s.FindOrNew(uri)
	if err != nil {
		t.Fatal(err)
	}

	second, err := s.FindOrNew(uri)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Fatal("second lookup must come from cache")
	}
}
