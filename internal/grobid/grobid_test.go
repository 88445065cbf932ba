package grobid

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProcessFulltext(t *testing.T) {
	const tei = `<TEI xmlns="http://www.tei-c.org/ns/1.0"></TEI>`
	var gotPDF []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/processFulltextDocument" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, _, err := r.FormFile("input")
		if err != nil {
			t.Errorf("missing input part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotPDF, _ = io.ReadAll(file)
		w.Write([]byte(tei))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	out, err := c.ProcessFulltext(context.Background(), []byte("%PDF-1.5 fake"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != tei {
		t.Errorf("out = %q", out)
	}
	if string(gotPDF) != "%PDF-1.5 fake" {
		t.Errorf("uploaded = %q", gotPDF)
	}
}

func TestProcessFulltext_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.ProcessFulltext(context.Background(), []byte("pdf"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestProcessFulltext_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   "))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.ProcessFulltext(context.Background(), []byte("pdf"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
