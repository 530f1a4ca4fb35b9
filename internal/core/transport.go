// Package core implements the audit pipeline: entity stores loaded from
// the upstream API, the linkage pass resolving GUID references into
// object relationships, the rule analysis pass, the issue ledger and the
// confirmable fix queue.
package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// ErrNotFound is returned by a Transport when a request succeeded but
// the resource or page does not exist. Loads treat it as end of data,
// not as a failure.
var ErrNotFound = errors.New("not found")

// Upstream API resources, one per entity collection.
const (
	ResourceMembers  = "Members"
	ResourceGroups   = "ClubGroups"
	ResourceSessions = "ClubSessions"
	ResourceRoles    = "ClubRoles"
	ResourceLists    = "EmailLists"
	ResourceConduct  = "CodeOfConduct"
	ResourceWhosWho  = "WhosWho"
)

// Transport fetches pages of records from the upstream system and writes
// records back. Pages are 1-indexed; page size is whatever the upstream
// returns.
type Transport interface {
	Read(ctx context.Context, resource string, page int) ([]domain.Record, error)
	Write(ctx context.Context, resource string, rec domain.Record, create bool) error
}

// Notifier is the sink for human-readable progress text. The pipeline
// behaves identically against a no-op sink.
type Notifier interface {
	Notify(msg string)
}

// NopNotifier discards all progress text.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string) {}

// WriterNotifier forwards progress text to an io.Writer, typically
// stderr.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (n WriterNotifier) Notify(msg string) {
	fmt.Fprint(n.W, msg)
}

// Confirmer answers the human-in-the-loop prompts raised while applying
// fixes. Automated contexts substitute a scripted implementation.
type Confirmer interface {
	YesNo(prompt string) bool
	Text(prompt string) (string, bool)
}

// StaticConfirmer answers every yes/no prompt with Answer and every text
// prompt with Reply.
type StaticConfirmer struct {
	Answer bool
	Reply  string
}

// YesNo implements Confirmer.
func (c StaticConfirmer) YesNo(string) bool { return c.Answer }

// Text implements Confirmer.
func (c StaticConfirmer) Text(string) (string, bool) { return c.Reply, c.Reply != "" }

// ReaderConfirmer prompts on out and reads answers from in.
type ReaderConfirmer struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// YesNo implements Confirmer. Anything but an explicit "y" is a no.
func (c *ReaderConfirmer) YesNo(prompt string) bool {
	answer, ok := c.Text(prompt + " (y/N)? ")
	return ok && strings.EqualFold(strings.TrimSpace(answer), "y")
}

// Text implements Confirmer.
func (c *ReaderConfirmer) Text(prompt string) (string, bool) {
	fmt.Fprint(c.Out, prompt)
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}
