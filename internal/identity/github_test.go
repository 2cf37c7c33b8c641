// internal/identity/github_test.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"login":"alice"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	login, err := client.Login(context.Background(), "Bearer tok")
	if err != nil {
		t.Fatal(err)
	}
	if login != "alice" {
		t.Errorf("login = %q", login)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "Bearer bad")
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestLoginEmptyLoginIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "Bearer tok")
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected for empty login, got %v", err)
	}
}

func TestPrimaryEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/emails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"email":"work@example.com","primary":false},
			{"email":"home@example.com","primary":true}
		]`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	email, err := client.PrimaryEmail(context.Background(), "Bearer tok")
	if err != nil {
		t.Fatal(err)
	}
	if email != "home@example.com" {
		t.Errorf("email = %q", email)
	}
}

func TestPrimaryEmailMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"email":"work@example.com","primary":false}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.PrimaryEmail(context.Background(), "Bearer tok")
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected when no primary entry, got %v", err)
	}
}

func TestTransportErrorIsNotRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "Bearer tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrRejected) {
		t.Error("transport failure must not look like a rejection")
	}
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"alice","id":7}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	user, err := client.Verify(context.Background(), "Bearer tok")
	if err != nil {
		t.Fatal(err)
	}
	if string(user) != `{"login":"alice","id":7}` {
		t.Errorf("user = %s", user)
	}
}
