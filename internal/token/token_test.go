package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	s := &Service{Secret: []byte("test-secret"), TTL: time.Hour}

	raw, err := s.Issue("ana@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	email, err := s.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "ana@x.com", email)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	s := &Service{Secret: []byte("test-secret")}
	raw, err := s.Issue("ana@x.com")
	require.NoError(t, err)

	other := &Service{Secret: []byte("other-secret")}
	_, err = other.Parse(raw)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	s := &Service{Secret: []byte("test-secret")}
	_, err := s.Parse("not-a-token")
	require.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	s := &Service{Secret: []byte("test-secret"), TTL: -time.Minute}
	raw, err := s.Issue("ana@x.com")
	require.NoError(t, err)

	_, err = s.Parse(raw)
	require.Error(t, err)
}
