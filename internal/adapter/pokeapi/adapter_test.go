package pokeapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"PikaMatch/internal/config"
	"PikaMatch/internal/errs"
	"PikaMatch/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAdapter(baseURL string) *Adapter {
	cfg := &config.SourceConfig{BaseURL: baseURL, Timeout: 5}
	return NewAdapter(cfg, newTestLogger()).(*Adapter)
}

func TestFetchByNameOrID(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/pokemon/pikachu", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 25,
			"name": "pikachu",
			"sprites": {"other": {"official-artwork": {"front_default": "https://img.example/25.png"}}},
			"species": {"url": "` + serverURL + `/pokemon-species/25"}
		}`))
	})
	mux.HandleFunc("/pokemon-species/25", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flavor_text_entries": [
			{"flavor_text": "ほっぺたの りょうがわに", "language": {"name": "ja"}},
			{"flavor_text": "When several of\nthese POKMON\fgather, electricity builds.", "language": {"name": "en"}}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	serverURL = ts.URL

	a := newTestAdapter(ts.URL)
	character, err := a.FetchByNameOrID(context.Background(), "Pikachu")

	require.NoError(t, err)
	assert.Equal(t, "25", character.ExternalID)
	assert.Equal(t, "Pikachu", character.Name)
	assert.Equal(t, model.SourcePokemon, character.Source)
	assert.Equal(t, "https://img.example/25.png", character.ImageURL)
	// 换行和分页符压缩为单个空格
	assert.Equal(t, "When several of these POKMON gather, electricity builds.", character.Description)
}

func TestFetchByNameOrIDRewritesOfficialSpeciesURL(t *testing.T) {
	speciesHit := false
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		// species.url按官方正式地址返回，适配器应改写为测试服务器地址
		_, _ = w.Write([]byte(`{
			"id": 1,
			"name": "bulbasaur",
			"species": {"url": "https://pokeapi.co/api/v2/pokemon-species/1"}
		}`))
	})
	mux.HandleFunc("/pokemon-species/1", func(w http.ResponseWriter, r *http.Request) {
		speciesHit = true
		_, _ = w.Write([]byte(`{"flavor_text_entries": [{"flavor_text": "A strange seed.", "language": {"name": "en"}}]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	a := newTestAdapter(ts.URL)
	character, err := a.FetchByNameOrID(context.Background(), "1")

	require.NoError(t, err)
	assert.True(t, speciesHit)
	assert.Equal(t, "A strange seed.", character.Description)
}

func TestFetchByNameOrIDDegradesOnSpeciesFailure(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/pokemon/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7, "name": "squirtle", "species": {"url": "` + serverURL + `/pokemon-species/7"}}`))
	})
	mux.HandleFunc("/pokemon-species/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	serverURL = ts.URL

	a := newTestAdapter(ts.URL)
	character, err := a.FetchByNameOrID(context.Background(), "7")

	// 二次请求失败不影响整次抓取
	require.NoError(t, err)
	assert.Equal(t, "Squirtle", character.Name)
	assert.Empty(t, character.Description)
	assert.Empty(t, character.ImageURL)
}

func TestFetchByNameOrIDServerErrorIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	a := newTestAdapter(ts.URL)
	_, err := a.FetchByNameOrID(context.Background(), "25")

	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
}

func TestFetchByNameOrIDEmptyBodyIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	a := newTestAdapter(ts.URL)
	_, err := a.FetchByNameOrID(context.Background(), "0")

	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
}

func TestFetchRandomRespectsConfiguredMaxID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// max_id为1时只可能请求/pokemon/1
		require.Equal(t, "/pokemon/1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 1, "name": "bulbasaur"}`))
	}))
	defer ts.Close()

	cfg := &config.SourceConfig{BaseURL: ts.URL, Timeout: 5, MaxID: 1}
	a := NewAdapter(cfg, newTestLogger()).(*Adapter)

	character, err := a.FetchRandom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bulbasaur", character.Name)
}

func TestFetchByNameOrIDConnectionRefusedIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	a := newTestAdapter(ts.URL)
	_, err := a.FetchByNameOrID(context.Background(), "25")

	require.Error(t, err)
	var transient *errs.TransientError
	assert.True(t, errors.As(err, &transient))
}
