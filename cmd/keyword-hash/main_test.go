package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// hashFromOutput 取出输出行中的 hash，去掉引号。
func hashFromOutput(t *testing.T, out string) string {
	t.Helper()
	line := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(line, "ADMIN_KEYWORD_HASH='"), line)
	require.True(t, strings.HasSuffix(line, "'"), line)
	return strings.TrimSuffix(strings.TrimPrefix(line, "ADMIN_KEYWORD_HASH='"), "'")
}

func TestRunHashesKeywordFromStdin(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"--cost", "4"}, strings.NewReader("open-sesame\n"), &out)
	require.NoError(t, err)

	verifier, err := adminsession.LoadKeywordVerifier("", hashFromOutput(t, out.String()))
	require.NoError(t, err)
	assert.True(t, verifier.Verify("open-sesame"))
	assert.False(t, verifier.Verify("Open-Sesame"))
}

func TestRunUsesKeywordFlag(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--keyword", "flag-word", "--cost", "4"}, strings.NewReader(""), &out))

	hash := hashFromOutput(t, out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("flag-word")))
}

func TestRunOutputSurvivesEnvFile(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--keyword", "dotenv-word", "--cost", "4"}, strings.NewReader(""), &out))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o600))

	// godotenv 不覆盖已存在的变量，先登记恢复再清除
	t.Setenv("ADMIN_KEYWORD_HASH", "")
	t.Setenv("ADMIN_KEYWORD", "")
	require.NoError(t, os.Unsetenv("ADMIN_KEYWORD_HASH"))

	require.NoError(t, config.LoadEnvFile(path))
	cfg := config.Load()
	assert.Equal(t, hashFromOutput(t, out.String()), cfg.AdminKeywordHash)

	verifier, err := adminsession.LoadKeywordVerifier(cfg.AdminKeyword, cfg.AdminKeywordHash)
	require.NoError(t, err)
	assert.True(t, verifier.Verify("dotenv-word"))
}

func TestRunRejectsEmptyKeyword(t *testing.T) {
	err := run(nil, strings.NewReader("\n"), &bytes.Buffer{})
	assert.Error(t, err)
}
