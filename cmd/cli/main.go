// Command sealnote is a CLI client for the sealnote service. All encryption
// and decryption happens locally; the server only ever sees ciphertext.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/m-yakovlev/sealnote/internal/convert"
	"github.com/m-yakovlev/sealnote/internal/crypto/notecrypt"
	"github.com/m-yakovlev/sealnote/internal/model"
	"github.com/m-yakovlev/sealnote/internal/sharelink"
	"github.com/m-yakovlev/sealnote/internal/threatscan"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "create":
		err = cmdCreate(os.Args[2:])
	case "read":
		err = cmdRead(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "delete":
		err = cmdDelete(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sealnote <command> [flags]

commands:
  create   encrypt content locally and store it, printing the share link
  read     fetch and decrypt a note from a share link or id+key
  scan     run the threat scanner on content without submitting anything
  delete   revoke a note before it expires`)
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func queryEscape(s string) string { return url.QueryEscape(s) }

// ---- create ----

func cmdCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	server := fs.String("server", envOr("SEALNOTE_SERVER", "http://localhost:8080"), "server base URL")
	file := fs.String("file", "", "encrypt a file instead of text")
	expires := fs.Duration("expires", 0, "time-to-live, e.g. 24h (0 = no time limit)")
	maxViews := fs.Int("max-views", 0, "views before self-destruct (0 = unlimited)")
	password := fs.String("password", "", "gate reads behind a password")
	strict := fs.Bool("strict", false, "refuse submission when the threat score is high")
	force := fs.Bool("force", false, "submit despite a strict-mode refusal")
	_ = fs.Parse(args)

	var plaintext []byte
	var isFile bool
	var fileName, mimeType string
	switch {
	case *file != "":
		b, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		plaintext = b
		isFile = true
		fileName = filepath.Base(*file)
		mimeType = mime.TypeByExtension(filepath.Ext(*file))
	case fs.NArg() > 0:
		plaintext = []byte(strings.Join(fs.Args(), " "))
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		plaintext = b
	}
	if len(plaintext) == 0 {
		return fmt.Errorf("nothing to encrypt")
	}

	// Advisory scan before anything leaves this machine. Strict mode is an
	// explicit flag on the submission path, not a global toggle.
	if !isFile && utf8.Valid(plaintext) {
		analysis := threatscan.Analyze(string(plaintext))
		printAnalysis(analysis)
		if *strict && analysis.Score >= 70 && !*force {
			return fmt.Errorf("refusing to submit sensitive content in strict mode (use -force to override)")
		}
	}

	payload, err := notecrypt.Encrypt(plaintext)
	if err != nil {
		return err
	}

	req := convert.CreateNoteRequest{
		EncryptedData: base64.StdEncoding.EncodeToString(payload.Ciphertext),
		IV:            base64.StdEncoding.EncodeToString(payload.IV),
		AuthTag:       base64.StdEncoding.EncodeToString(payload.AuthTag),
		MaxViews:      *maxViews,
		IsFile:        isFile,
		Password:      *password,
	}
	if isFile {
		req.FileName = &fileName
		if mimeType != "" {
			req.MimeType = &mimeType
		}
	}
	if *expires > 0 {
		exp := time.Now().Add(*expires).UTC().Format(time.RFC3339)
		req.ExpiresAt = &exp
	}

	ctx, cancel := withTimeout()
	defer cancel()
	cli := newAPIClient(*server)
	created, err := cli.createNote(ctx, req)
	if err != nil {
		return err
	}

	key := base64.StdEncoding.EncodeToString(payload.Key)
	fmt.Println("share link:", sharelink.Build(*server, created.ID, key, *password))
	if created.DeleteToken != "" {
		fmt.Println("delete token:", created.DeleteToken)
	}
	return nil
}

// ---- read ----

func cmdRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	server := fs.String("server", envOr("SEALNOTE_SERVER", "http://localhost:8080"), "server base URL")
	keyFlag := fs.String("key", "", "base64 note key (when passing a bare id)")
	password := fs.String("password", "", "note password")
	out := fs.String("out", "", "write decrypted content to a file")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sealnote read [flags] <share-link|id>")
	}
	arg := fs.Arg(0)

	id, keyB64, pw := arg, *keyFlag, *password
	if strings.Contains(arg, "://") {
		link, err := sharelink.Parse(arg)
		if err != nil {
			return err
		}
		id, keyB64 = link.ID, link.Key
		if pw == "" {
			pw = link.Password
		}
	}
	if keyB64 == "" {
		return fmt.Errorf("no key: pass a full share link or -key")
	}
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return fmt.Errorf("key is not base64")
	}

	ctx, cancel := withTimeout()
	defer cancel()
	cli := newAPIClient(*server)

	note, err := cli.readNote(ctx, id, pw)
	if requiresPassword(err) {
		pw, err = promptPassword()
		if err != nil {
			return err
		}
		note, err = cli.readNote(ctx, id, pw)
	}
	if err != nil {
		return err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(note.EncryptedData)
	if err != nil {
		return fmt.Errorf("server returned malformed payload")
	}
	iv, err := base64.StdEncoding.DecodeString(note.IV)
	if err != nil {
		return fmt.Errorf("server returned malformed payload")
	}
	tag, err := base64.StdEncoding.DecodeString(note.AuthTag)
	if err != nil {
		return fmt.Errorf("server returned malformed payload")
	}

	plaintext, err := notecrypt.Decrypt(ciphertext, iv, tag, key)
	if err != nil {
		return err
	}

	if *out != "" {
		return os.WriteFile(*out, plaintext, 0o600)
	}
	if note.IsFile && note.FileName != nil {
		name := filepath.Base(*note.FileName)
		if err := os.WriteFile(name, plaintext, 0o600); err != nil {
			return err
		}
		fmt.Println("wrote", name)
		return nil
	}
	if utf8.Valid(plaintext) {
		fmt.Println(string(plaintext))
	} else {
		_, err = os.Stdout.Write(plaintext)
	}
	if note.MaxViews > 0 {
		fmt.Fprintf(os.Stderr, "view %d of %d\n", note.ViewCount, note.MaxViews)
	}
	return err
}

// ---- scan ----

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	_ = fs.Parse(args)

	var text string
	if fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = string(b)
	}
	printAnalysis(threatscan.Analyze(text))
	return nil
}

func printAnalysis(a model.ThreatAnalysis) {
	fmt.Fprintf(os.Stderr, "threat level: %s (score %d)\n", a.Level, a.Score)
	for _, alert := range a.Alerts {
		fmt.Fprintf(os.Stderr, "  [%s/%s] %s\n", alert.Severity, alert.Category, alert.Message)
	}
	if a.Masked != "" {
		fmt.Fprintf(os.Stderr, "masked preview:\n%s\n", a.Masked)
	}
}

// ---- delete ----

func cmdDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	server := fs.String("server", envOr("SEALNOTE_SERVER", "http://localhost:8080"), "server base URL")
	token := fs.String("token", "", "deletion token from create")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sealnote delete [flags] <share-link|id>")
	}
	id := fs.Arg(0)
	if strings.Contains(id, "://") {
		link, err := sharelink.Parse(id)
		if err != nil {
			return err
		}
		id = link.ID
	}

	ctx, cancel := withTimeout()
	defer cancel()
	if err := newAPIClient(*server).deleteNote(ctx, id, *token); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

// ---- helpers ----

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
