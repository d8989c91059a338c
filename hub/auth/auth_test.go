package auth

import (
	"net/http"
	"testing"
)

// minimal cost keeps the tests fast
var signer = &Bcrypt{Cost: 4}

func reqWith(hs map[string]string) *http.Request {
	r := &http.Request{Header: make(http.Header)}
	for k, v := range hs {
		r.Header.Set(k, v)
	}
	return r
}

func TestBcrypt(t *testing.T) {
	signed, err := signer.Sign("sesame")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if err := signer.Verify(signed, "sesame"); err != nil {
		t.Errorf("verify failed: %v", err)
	}
	if err := signer.Verify(signed, "wrong"); err == nil {
		t.Errorf("want verify error for wrong pass")
	}
}

func TestCheck(t *testing.T) {
	signed, err := signer.Sign("sesame")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	check := Check(signer, signed)
	if err := check(reqWith(map[string]string{Header: "sesame"})); err != nil {
		t.Errorf("check failed: %v", err)
	}
	if err := check(reqWith(nil)); err == nil {
		t.Errorf("want check error without token")
	}
}

func TestTokens(t *testing.T) {
	var st Tokens
	if _, err := st.Token("ann"); err == nil {
		t.Errorf("want error for unknown user")
	}
	signed, err := signer.Sign("sesame")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if err := st.Save("ann", signed); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := st.Token("ann")
	if err != nil || got != signed {
		t.Errorf("want saved token back, got %q %v", got, err)
	}

	check := CheckUsers(signer, &st)
	ok := reqWith(map[string]string{UserHeader: "ann", Header: "sesame"})
	if err := check(ok); err != nil {
		t.Errorf("check failed: %v", err)
	}
	bad := reqWith(map[string]string{UserHeader: "ann", Header: "wrong"})
	if err := check(bad); err == nil {
		t.Errorf("want check error for wrong pass")
	}
	unknown := reqWith(map[string]string{UserHeader: "bob", Header: "sesame"})
	if err := check(unknown); err == nil {
		t.Errorf("want check error for unknown user")
	}
}
