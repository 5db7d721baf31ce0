package gateway

import (
	"encoding/json"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Error-Code", "errorcode"},
		{"error_code", "errorcode"},
		{"errorCode", "errorcode"},
		{"AUTH CODE", "authcode"},
		{"txid", "txid"},
		{"  status  ", "status"},
		{"r.avs.code", "ravscode"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Fatalf("NormalizeKey(%q) = %q want %q", c.in, got, c.want)
		}
	}
}

func TestParams_OrderPreserved(t *testing.T) {
	p := NewParams()
	p.Set("Status", "APPROVED")
	p.Set("TxId", "19779424")
	p.Set("AVS-Code", "Y")
	p.Set("Status", "DECLINED") // update keeps position

	want := []string{"status", "txid", "avscode"}
	got := p.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q want %q", i, got[i], want[i])
		}
	}
	if p.Get("status") != "DECLINED" {
		t.Fatalf("Get(status) = %q", p.Get("status"))
	}
	if p.Len() != 3 {
		t.Fatalf("Len() = %d", p.Len())
	}
}

func TestParams_LookupNormalizesKey(t *testing.T) {
	p := NewParams()
	p.Set("error_message", "Parameter missing")
	if !p.Has("Error-Message") {
		t.Fatal("Has with differently punctuated key failed")
	}
	if p.Get("errorMessage") != "Parameter missing" {
		t.Fatalf("Get = %q", p.Get("errorMessage"))
	}
}

func TestParams_NilSafe(t *testing.T) {
	var p *Params
	if p.Get("anything") != "" || p.Has("anything") || p.Len() != 0 || p.Keys() != nil {
		t.Fatal("nil Params accessors should be zero-valued")
	}
}

func TestParams_MarshalJSONOrdered(t *testing.T) {
	p := NewParams()
	p.Set("zeta", "1")
	p.Set("alpha", "2")
	p.Set("mid", "3")

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":"1","alpha":"2","mid":"3"}`
	if string(raw) != want {
		t.Fatalf("MarshalJSON = %s want %s", raw, want)
	}
}
