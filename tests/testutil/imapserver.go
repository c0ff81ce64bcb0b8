package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
)

const (
	TestUsername = "reader@example.com"
	TestPassword = "test-password"
)

// Message is the server-side state of one message as seen by a fresh
// session.
type Message struct {
	UID          imap.UID
	Flags        []imap.Flag
	InternalDate time.Time
}

// HasFlag reports whether the message carries flag.
func (m Message) HasFlag(flag imap.Flag) bool {
	for _, f := range m.Flags {
		if strings.EqualFold(string(f), string(flag)) {
			return true
		}
	}
	return false
}

// TestServer is an in-memory IMAP server listening on implicit TLS with a
// self-signed certificate.
type TestServer struct {
	Host string
	Port int
}

// NewTestServer starts an IMAP server with one account owning the given
// mailboxes (INBOX is always created). The server is stopped when the
// test completes.
func NewTestServer(t *testing.T, mailboxes ...string) *TestServer {
	t.Helper()

	mem := imapmemserver.New()
	user := imapmemserver.NewUser(TestUsername, TestPassword)
	for _, name := range append([]string{"INBOX"}, mailboxes...) {
		if err := user.Create(name, nil); err != nil {
			t.Fatalf("creating mailbox %s: %v", name, err)
		}
	}
	mem.AddUser(user)

	tlsConfig := &tls.Config{Certificates: []tls.Certificate{selfSignedCert(t)}}

	server := imapserver.New(&imapserver.Options{
		NewSession: func(*imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return mem.NewSession(), nil, nil
		},
		Caps: imap.CapSet{
			imap.CapIMAP4rev1: {},
		},
		TLSConfig: tlsConfig,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(tls.NewListener(ln, tlsConfig))
	}()

	// Closing the listener first makes Serve return nil whether or not it
	// has started accepting yet.
	t.Cleanup(func() {
		_ = ln.Close()
		if err := <-serveErr; err != nil {
			t.Errorf("serving IMAP: %v", err)
		}
		if err := server.Close(); err != nil {
			t.Errorf("closing IMAP server: %v", err)
		}
	})

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("parsing listener address: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing listener port: %v", err)
	}

	return &TestServer{Host: host, Port: port}
}

// Address returns the host:port the server listens on.
func (s *TestServer) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Append stores a message in mailbox with the given internal date and
// flags, and returns its UID.
func (s *TestServer) Append(
	t *testing.T, mailbox string, date time.Time, flags ...imap.Flag,
) imap.UID {
	t.Helper()

	client := s.dial(t)
	defer func() { _ = client.Logout().Wait() }()

	raw := fmt.Sprintf(
		"From: sender@example.com\r\n"+
			"To: %s\r\n"+
			"Subject: dated %s\r\n"+
			"Date: %s\r\n"+
			"\r\n"+
			"body\r\n",
		TestUsername, date.Format(time.DateOnly), date.Format(time.RFC1123Z),
	)

	appendCmd := client.Append(mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: flags,
		Time:  date,
	})
	if _, err := appendCmd.Write([]byte(raw)); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	if err := appendCmd.Close(); err != nil {
		t.Fatalf("closing append: %v", err)
	}
	data, err := appendCmd.Wait()
	if err != nil {
		t.Fatalf("appending to %s: %v", mailbox, err)
	}

	return data.UID
}

// Messages lists the messages currently in mailbox, in sequence order.
func (s *TestServer) Messages(t *testing.T, mailbox string) []Message {
	t.Helper()

	client := s.dial(t)
	defer func() { _ = client.Logout().Wait() }()

	selected, err := client.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		t.Fatalf("selecting %s: %v", mailbox, err)
	}
	if selected.NumMessages == 0 {
		return nil
	}

	seqNums := make([]uint32, 0, selected.NumMessages)
	for i := uint32(1); i <= selected.NumMessages; i++ {
		seqNums = append(seqNums, i)
	}

	bufs, err := client.Fetch(imap.SeqSetNum(seqNums...), &imap.FetchOptions{
		UID:          true,
		Flags:        true,
		InternalDate: true,
	}).Collect()
	if err != nil {
		t.Fatalf("fetching %s: %v", mailbox, err)
	}

	messages := make([]Message, 0, len(bufs))
	for _, buf := range bufs {
		messages = append(messages, Message{
			UID:          buf.UID,
			Flags:        buf.Flags,
			InternalDate: buf.InternalDate,
		})
	}
	return messages
}

func (s *TestServer) dial(t *testing.T) *imapclient.Client {
	t.Helper()

	client, err := imapclient.DialTLS(s.Address(), &imapclient.Options{
		TLSConfig: &tls.Config{InsecureSkipVerify: true},
	})
	if err != nil {
		t.Fatalf("dialing test server: %v", err)
	}
	if err := client.Login(TestUsername, TestPassword).Wait(); err != nil {
		t.Fatalf("logging in to test server: %v", err)
	}
	return client
}

// selfSignedCert returns a throwaway certificate for 127.0.0.1.
func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"news_archive test"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:     []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}
