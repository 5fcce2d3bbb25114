package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garyjia/billed/internal/cli"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestConfig(t *testing.T, email, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`database:
  driver: bolt
  path: %s
storage:
  attachment_dir: %s
session:
  email: "%s"
logger:
  output_path: %s
%s`,
		filepath.Join(dir, "billed.bolt"),
		filepath.Join(dir, "attachments"),
		email,
		filepath.Join(dir, "billed.log"),
		extra)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(args ...string) (string, error) {
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "billed dev")
}

func TestSeedAndList(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")

	out, err := run("seed", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "4 notes de frais ajoutées")

	out, err = run("list", "-c", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "4 Avr. 04")
	assert.Contains(t, out, "1 Jan. 01")
	assert.Contains(t, out, entity.LabelPending)
	assert.Contains(t, out, entity.LabelAccepted)
	assert.Contains(t, out, entity.LabelRefused)
	assert.Contains(t, out, "400.00 €")

	newest := strings.Index(out, "encore")
	oldest := strings.Index(out, "test1")
	require.True(t, newest >= 0 && oldest >= 0)
	assert.Less(t, newest, oldest)
}

func TestList_Empty(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")

	out, err := run("list", "-c", cfg)

	require.NoError(t, err)
	assert.Contains(t, out, "Aucune note de frais")
}

func TestList_Preview(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	_, err := run("seed", "-c", cfg)
	require.NoError(t, err)

	out, err := run("list", "-c", cfg, "--preview", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Justificatif: https://test.storage.tld/")

	out, err = run("list", "-c", cfg, "--preview", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Justificatif indisponible")

	_, err = run("list", "-c", cfg, "--preview", "9")
	assert.Error(t, err)
}

func TestList_XLSX(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	_, err := run("seed", "-c", cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bills.xlsx")
	out, err := run("list", "-c", cfg, "--xlsx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "4 notes de frais exportées")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Type", rows[0][0])
	assert.Equal(t, "encore", rows[1][1])
}

func TestList_RemoteErrorIsPrintedUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"boom"}`))
	}))
	defer srv.Close()

	cfg := writeTestConfig(t, "employee@test.tld", "client:\n  api_base_url: "+srv.URL+"\n")

	out, err := run("list", "-c", cfg)

	require.EqualError(t, err, "Erreur 500")
	assert.Contains(t, out, "Erreur 500")
}

func TestSubmit(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	proof := filepath.Join(t.TempDir(), "ticket.png")
	require.NoError(t, os.WriteFile(proof, []byte("\x89PNG\r\n\x1a\n"), 0644))

	out, err := run("submit", "-c", cfg,
		"-f", proof,
		"--name", "Vol Paris Londres",
		"--date", "2022-02-15",
		"--amount", "348",
		"--vat", "70",
		"--pct", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "→ "+entity.RouteBills)
	assert.Contains(t, out, "enregistrée")

	out, err = run("list", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Vol Paris Londres")
	assert.Contains(t, out, "15 Fév. 22")
	assert.Contains(t, out, "348.00 €")
	assert.Contains(t, out, "ticket.png")
}

func TestSubmit_RejectsInvalidExtension(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	proof := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(proof, []byte("text"), 0644))

	out, err := run("submit", "-c", cfg, "-f", proof, "--name", "x")

	var validationErr *entity.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, out, entity.MsgInvalidExtension)
}

func TestSubmit_WithoutSessionUser(t *testing.T) {
	cfg := writeTestConfig(t, "", "")
	proof := filepath.Join(t.TempDir(), "ticket.jpg")
	require.NoError(t, os.WriteFile(proof, []byte("jpeg"), 0644))

	_, err := run("submit", "-c", cfg, "-f", proof, "--name", "x")

	assert.ErrorIs(t, err, entity.ErrNoSessionUser)
}

func TestSeed_FromFile(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	fixtures := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(`bills:
  - id: seed-1
    email: a@a
    type: Transports
    name: Taxi aéroport
    amount: 42.5
    date: "2021-06-30"
    pct: 10
    fileUrl: null
    fileName: null
    status: accepted
`), 0644))

	out, err := run("seed", "-c", cfg, "-f", fixtures)
	require.NoError(t, err)
	assert.Contains(t, out, "1 notes de frais ajoutées")

	out, err = run("list", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Taxi aéroport")
	assert.Contains(t, out, "30 Jui. 21")
	assert.Contains(t, out, entity.LabelAccepted)
}

func TestSeed_RejectsFixtureWithoutID(t *testing.T) {
	cfg := writeTestConfig(t, "employee@test.tld", "")
	fixtures := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte("bills:\n  - name: orphan\n"), 0644))

	_, err := run("seed", "-c", cfg, "-f", fixtures)

	assert.ErrorContains(t, err, "has no id")
}
