// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

//nolint:errcheck
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/nextchat/credkey/internal/config"
	"github.com/nextchat/credkey/internal/crypto"
	"github.com/nextchat/credkey/internal/crypto/code"
	"github.com/nextchat/credkey/internal/crypto/keypair"
	"github.com/nextchat/credkey/internal/crypto/modexp"
	"github.com/nextchat/credkey/internal/i18n"
	"github.com/nextchat/credkey/internal/logging"
	"github.com/nextchat/credkey/internal/verifier"
)

// isolateConfig points config discovery at an empty temp dir so a developer's
// own credkey.yaml never leaks into a test.
func isolateConfig(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	t.Cleanup(func() {
		i18n.Init("en")
		logging.SetDebug(false)
	})
	return tmp
}

// executeCommand runs a fresh root command with the given arguments and
// stdin, and returns what it wrote to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	logging.L.SetOutput(&errOut)
	defer logging.L.SetOutput(os.Stderr)

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, errOut, err := executeCommand(t, stdin, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr:\n%s", args, err, errOut)
	}
	return out
}

func TestPrimeCmd(t *testing.T) {
	isolateConfig(t)
	out := mustExecute(t, "", "prime", "--bits", "48")
	p, ok := new(big.Int).SetString(strings.TrimSpace(out), 10)
	if !ok {
		t.Fatalf("prime output is not decimal: %q", out)
	}
	if p.BitLen() != 48 || !p.ProbablyPrime(32) {
		t.Fatalf("got %s (%d bits), want a 48-bit prime", p, p.BitLen())
	}
}

func TestPrimeCmd_InvalidBits(t *testing.T) {
	isolateConfig(t)
	_, _, err := executeCommand(t, "", "prime", "--bits", "1")
	if !errors.Is(err, crypto.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestKeygenCmd_Formats(t *testing.T) {
	isolateConfig(t)

	var keys keypair.Keys
	out := mustExecute(t, "", "keygen", "--bits", "96", "-o", "json")
	if err := json.Unmarshal([]byte(out), &keys); err != nil {
		t.Fatalf("keygen json output: %v\n%s", err, out)
	}
	n, err := modexp.ParseDecimal(keys.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if n.BitLen() < 95 || n.BitLen() > 97 {
		t.Fatalf("modulus has %d bits, want about 96", n.BitLen())
	}

	out = mustExecute(t, "", "keygen", "--bits", "64", "-o", "yaml")
	keys = keypair.Keys{}
	if err := yaml.Unmarshal([]byte(out), &keys); err != nil || keys.PrivateKey == "" {
		t.Fatalf("keygen yaml output unusable (%v):\n%s", err, out)
	}

	out = mustExecute(t, "", "keygen", "--bits", "64")
	if !strings.Contains(out, "PUBLIC KEY") || !strings.Contains(out, "PRIVATE KEY") {
		t.Fatalf("unexpected text output:\n%s", out)
	}

	if _, _, err := executeCommand(t, "", "keygen", "-o", "xml"); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestEncryptCmd(t *testing.T) {
	isolateConfig(t)
	out := mustExecute(t, "", "encrypt", "--key", "340282366920938463463374607431768211507", "password123")
	want, err := modexp.EncryptString("password123", "340282366920938463463374607431768211507")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != want {
		t.Fatalf("encrypt = %q, want %q", strings.TrimSpace(out), want)
	}

	out = mustExecute(t, "password123\n", "encrypt", "--key", "340282366920938463463374607431768211507")
	if strings.TrimSpace(out) != want {
		t.Fatalf("encrypt from stdin = %q, want %q", strings.TrimSpace(out), want)
	}

	if _, _, err := executeCommand(t, "", "encrypt", "--key", "007", "x"); !errors.Is(err, crypto.ErrInvalidArgument) {
		t.Fatalf("leading-zero key error = %v, want ErrInvalidArgument", err)
	}
}

func TestEnrollThenVerify(t *testing.T) {
	isolateConfig(t)

	out := mustExecute(t, "password123\n", "enroll")
	var rec verifier.Record
	if err := yaml.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("enroll output: %v\n%s", err, out)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("enroll produced invalid record %+v: %v", rec, err)
	}

	out = mustExecute(t, "password123\n", "verify", "--password", rec.Ciphertext, "--password-key", rec.Modulus)
	if !strings.Contains(out, "matches") {
		t.Fatalf("unexpected verify output: %q", out)
	}

	_, _, err := executeCommand(t, "password124\n", "verify", "--password", rec.Ciphertext, "--password-key", rec.Modulus)
	if !errors.Is(err, verifier.ErrMismatch) {
		t.Fatalf("verify(wrong) error = %v, want ErrMismatch", err)
	}
}

func TestVerifyCmd_RecordFile(t *testing.T) {
	dir := isolateConfig(t)

	out := mustExecute(t, "hunter2\n", "enroll", "-o", "json")
	path := filepath.Join(dir, "record.json")
	if err := os.WriteFile(path, []byte(out), 0600); err != nil {
		t.Fatal(err)
	}

	mustExecute(t, "hunter2\n", "verify", "--record", path)
	if _, _, err := executeCommand(t, "hunter3\n", "verify", "--record", path); !errors.Is(err, verifier.ErrMismatch) {
		t.Fatalf("error = %v, want ErrMismatch", err)
	}
}

func TestVerifyCmd_MissingRecord(t *testing.T) {
	isolateConfig(t)
	_, _, err := executeCommand(t, "x\n", "verify", "--password", "12")
	if err == nil || !strings.Contains(err.Error(), "--password-key") {
		t.Fatalf("error = %v, want a hint about --password-key", err)
	}
}

func TestEnrollCmd_EmptyCredential(t *testing.T) {
	isolateConfig(t)
	if _, _, err := executeCommand(t, "\n", "enroll"); err == nil {
		t.Fatal("empty credential accepted")
	}
}

func TestEnrollBatchCmd(t *testing.T) {
	dir := isolateConfig(t)

	creds := []string{"alpha", "bravo", "charlie", "delta"}
	in := filepath.Join(dir, "creds.txt")
	if err := os.WriteFile(in, []byte(strings.Join(creds, "\n")+"\n\n"), 0600); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "records.yaml.zst")

	_, errOut, err := executeCommand(t, "", "enroll-batch", "--in", in, "--out", outPath)
	if err != nil {
		t.Fatalf("enroll-batch failed: %v\n%s", err, errOut)
	}
	if !strings.Contains(errOut, "Enrolled 4 credentials") {
		t.Fatalf("missing summary in stderr:\n%s", errOut)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, []byte{0x28, 0xB5, 0x2F, 0xFD}) {
		t.Fatalf("output is not zstd: % x (%v)", head, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	records, err := verifier.ReadRecords(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(creds) {
		t.Fatalf("got %d records, want %d", len(records), len(creds))
	}
	for i, c := range creds {
		out := mustExecute(t, c+"\n", "verify", "--password", records[i].Ciphertext, "--password-key", records[i].Modulus)
		if !strings.Contains(out, "matches") {
			t.Fatalf("record %d does not verify %q", i, c)
		}
	}
}

func TestEnrollBatchCmd_Stdout(t *testing.T) {
	isolateConfig(t)
	out := mustExecute(t, "one\ntwo\n", "enroll-batch")
	records, err := verifier.UnmarshalRecords([]byte(out))
	if err != nil {
		t.Fatalf("stdout records: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestEnrollBatchCmd_Empty(t *testing.T) {
	isolateConfig(t)
	out, errOut, err := executeCommand(t, "\n\n", "enroll-batch")
	if err != nil {
		t.Fatalf("enroll-batch on empty input failed: %v", err)
	}
	if out != "" || !strings.Contains(errOut, "No credentials") {
		t.Fatalf("stdout=%q stderr=%q", out, errOut)
	}
}

func TestCodeCmd(t *testing.T) {
	isolateConfig(t)

	out := strings.TrimSpace(mustExecute(t, "", "code"))
	if len(out) != code.DefaultLength {
		t.Fatalf("code %q has length %d", out, len(out))
	}
	for _, r := range out {
		if !strings.ContainsRune(code.Alphabet, r) {
			t.Fatalf("code %q has symbol %q outside the alphabet", out, r)
		}
	}

	out = strings.TrimSpace(mustExecute(t, "", "code", "--length", "10", "--prefix", "acct"))
	if !strings.HasPrefix(out, "acct-") || len(out) != len("acct-")+10 {
		t.Fatalf("unexpected token %q", out)
	}

	if _, _, err := executeCommand(t, "", "code", "--length", "-1"); !errors.Is(err, crypto.ErrInvalidArgument) {
		t.Fatalf("negative length error = %v, want ErrInvalidArgument", err)
	}
}

func TestCodeCmd_Copy(t *testing.T) {
	isolateConfig(t)
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	defer func() { copyToClipboard = orig }()

	out, errOut, err := executeCommand(t, "", "code", "--copy")
	if err != nil {
		t.Fatal(err)
	}
	if copied == "" || copied != strings.TrimSpace(out) {
		t.Fatalf("copied %q, printed %q", copied, out)
	}
	if !strings.Contains(errOut, "clipboard") {
		t.Fatalf("missing copy notice: %q", errOut)
	}
}

func TestConfigFlagAndShow(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("code:\n  length: 9\nenroll:\n  workers: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, "", "--config", path, "config", "show")
	if !strings.Contains(out, "length: 9") || !strings.Contains(out, "workers: 2") {
		t.Fatalf("config show did not reflect file:\n%s", out)
	}

	out = strings.TrimSpace(mustExecute(t, "", "--config", path, "code"))
	if len(out) != 9 {
		t.Fatalf("code length %d, want 9 from config", len(out))
	}
}

func TestConfigFlag_Missing(t *testing.T) {
	dir := isolateConfig(t)
	if _, _, err := executeCommand(t, "", "--config", filepath.Join(dir, "nope.yaml"), "version"); err == nil {
		t.Fatal("missing --config file accepted")
	}
}

func TestConfigInit(t *testing.T) {
	isolateConfig(t)
	out := mustExecute(t, "", "config", "init")

	path, err := config.GetConfigPath(false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("output %q does not name %s", out, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "bits_per_char: 32") {
		t.Fatalf("unexpected config file:\n%s", data)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("enroll:\n  workers: 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, _, err := executeCommand(t, "", "--config", path, "code")
	if err == nil || !strings.Contains(err.Error(), "enroll.workers") {
		t.Fatalf("error = %v, want enroll.workers validation failure", err)
	}
}

func TestLogLevelFlag(t *testing.T) {
	isolateConfig(t)
	if _, _, err := executeCommand(t, "", "--log.level", "loud", "code"); err == nil {
		t.Fatal("invalid log level accepted")
	}
}

func TestLanguageFlag(t *testing.T) {
	isolateConfig(t)
	rec := mustExecute(t, "geheim\n", "enroll", "-o", "json")
	var r verifier.Record
	if err := json.Unmarshal([]byte(rec), &r); err != nil {
		t.Fatal(err)
	}
	out := mustExecute(t, "geheim\n", "--language", "de", "verify", "--password", r.Ciphertext, "--password-key", r.Modulus)
	if !strings.Contains(out, "Prüfwert") {
		t.Fatalf("expected German output, got %q", out)
	}
}

func TestVersionCmd(t *testing.T) {
	isolateConfig(t)
	out := mustExecute(t, "", "version")
	if !strings.Contains(out, "version: ") || !strings.Contains(out, "commit: ") {
		t.Fatalf("unexpected version output:\n%s", out)
	}
}
