package chainsim

import (
	"strings"
	"testing"

	"stackspay/chaind/gateway/config"
	"stackspay/pkg/nats/natsdomain"

	"github.com/shopspring/decimal"
)

func testSim() *Sim {
	return New(&config.Config{
		ConfirmAfterPolls:     2,
		RequiredConfirmations: 6,
	})
}

func TestNewAddress(t *testing.T) {
	s := testSim()

	res := s.NewAddress(&natsdomain.ReqNewAddress{Method: "sbtc", PaymentId: "p1"})

	if !strings.HasPrefix(res.Address, "ST") {
		t.Fatalf("sbtc address %q must be a stacks address", res.Address)
	}
	if res.DepositScript == "" || res.ReclaimScript == "" || res.SignerPublicKey == "" {
		t.Fatal("sbtc deposit missing script material")
	}

	// same payment id derives the same material
	again := s.NewAddress(&natsdomain.ReqNewAddress{Method: "sbtc", PaymentId: "p1"})
	if again.DepositScript != res.DepositScript {
		t.Fatal("script material must be stable per payment id")
	}

	btc := s.NewAddress(&natsdomain.ReqNewAddress{Method: "btc", PaymentId: "p2"})
	if strings.HasPrefix(btc.Address, "ST") {
		t.Fatalf("btc address %q must not be a stacks address", btc.Address)
	}
	if btc.DepositScript != "" {
		t.Fatal("btc deposit must not carry sbtc script material")
	}
}

func TestStatusProgression(t *testing.T) {
	s := testSim()

	res := s.NewAddress(&natsdomain.ReqNewAddress{Method: "btc", PaymentId: "p1", Amount: decimal.NewFromFloat(0.5)})

	// first polls stay pending
	for range 2 {
		status, err := s.Status(res.Address)
		if err != nil {
			t.Fatal(err)
		}
		if status.Status != natsdomain.DepositStatusPending {
			t.Fatalf("status = %s, want pending", status.Status)
		}
	}

	// then confirmations accumulate up to the required count
	var lastTx string
	for i := 1; i <= 8; i++ {
		status, err := s.Status(res.Address)
		if err != nil {
			t.Fatal(err)
		}
		if status.Status != natsdomain.DepositStatusConfirmed {
			t.Fatalf("poll %d: status = %s, want confirmed", i, status.Status)
		}

		want := i
		if want > 6 {
			want = 6
		}
		if status.Confirmations != want {
			t.Fatalf("poll %d: confirmations = %d, want %d", i, status.Confirmations, want)
		}

		if status.TxId == "" || status.BlockHeight == 0 {
			t.Fatal("confirmed deposit missing tx data")
		}
		if lastTx != "" && status.TxId != lastTx {
			t.Fatal("tx id must not change between polls")
		}
		lastTx = status.TxId

		if !status.Amount.Equal(decimal.NewFromFloat(0.5)) {
			t.Fatalf("amount = %s, want 0.5", status.Amount)
		}
	}
}

func TestStatusUnknownAddress(t *testing.T) {
	s := testSim()

	if _, err := s.Status("bc1qunknown"); err == nil {
		t.Fatal("unknown address must error")
	}
}

func TestStatusAlwaysFails(t *testing.T) {
	s := New(&config.Config{ConfirmAfterPolls: 1, RequiredConfirmations: 6, FailRate: 1})

	res := s.NewAddress(&natsdomain.ReqNewAddress{Method: "btc", PaymentId: "p1"})

	status, err := s.Status(res.Address)
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != natsdomain.DepositStatusFailed {
		t.Fatalf("status = %s, want failed with fail rate 1", status.Status)
	}

	// failure sticks
	status, _ = s.Status(res.Address)
	if status.Status != natsdomain.DepositStatusFailed {
		t.Fatal("failed deposit must stay failed")
	}
}
