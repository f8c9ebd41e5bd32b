package cnpj

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

func TestValid(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"formatted valid", "11.222.333/0001-81", true},
		{"bare valid", "11222333000181", true},
		{"wrong first check digit", "11222333000171", false},
		{"wrong second check digit", "11222333000180", false},
		{"repeated digits", "11111111111111", false},
		{"too short", "1122233300018", false},
		{"too long", "112223330001811", false},
		{"empty", "", false},
		{"letters only", "not-a-cnpj", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11222333000181", Normalize("11.222.333/0001-81"))
	assert.Equal(t, "", Normalize("abc"))
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/11222333000181":
			w.Write([]byte(`{"cnpj":"11222333000181","razao_social":"Pizzaria Boa Massa LTDA","nome_fantasia":"Boa Massa","municipio":"Sao Paulo","uf":"SP"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(logger.New(logger.LevelOff, nil), WithBaseURL(srv.URL))

	info, err := client.Lookup(context.Background(), "11.222.333/0001-81")
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria Boa Massa LTDA", info.LegalName)
	assert.Equal(t, "SP", info.State)
}

func TestLookupInvalidInputSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(logger.New(logger.LevelOff, nil), WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "123")
	require.Error(t, err)
	assert.False(t, called)
}

func TestLookupUnknownCNPJ(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// Valid checksum but unknown to the registry.
	client := NewClient(logger.New(logger.LevelOff, nil), WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "11222333000181")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
