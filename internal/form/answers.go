// File: internal/form/answers.go
package form

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var emailDomains = []string{"example.com", "test.com", "sample.net", "demo.org"}

var firstNames = []string{
	"John", "Mary", "James", "Patricia", "Michael",
	"Jennifer", "William", "Linda", "David", "Elizabeth",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Jones", "Brown",
	"Davis", "Miller", "Wilson", "Moore", "Taylor",
}

var phraseWords = []string{
	"great", "excellent", "good", "best", "better",
	"awesome", "nice", "perfect", "wonderful", "amazing",
}

const (
	// defaultMaxSelections bounds the fallback checkbox count when the
	// heading carries no parseable "select top N" instruction.
	defaultMaxSelections = 3

	selectTopPhrase = "select top"
)

// Generator produces randomized answer values and selection decisions.
// Each session owns its own Generator; the embedded rand source is not
// safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator creates a Generator. A nil rng gets a time-seeded source.
func NewGenerator(rng *rand.Rand, logger *zap.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, logger: logger.Named("answers")}
}

// Email synthesizes a random address: eight lowercase letters at one of the
// fixed domains.
func (g *Generator) Email() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	user := make([]byte, 8)
	for i := range user {
		user[i] = letters[g.rng.Intn(len(letters))]
	}
	return fmt.Sprintf("%s@%s", user, emailDomains[g.rng.Intn(len(emailDomains))])
}

// FullName synthesizes "<first> <last>" from the fixed name lists.
func (g *Generator) FullName() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

// Phrase joins 3 to 6 distinct words sampled from the fixed vocabulary.
func (g *Generator) Phrase() string {
	n := 3 + g.rng.Intn(4)
	perm := g.rng.Perm(len(phraseWords))
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = phraseWords[perm[i]]
	}
	return strings.Join(words, " ")
}

// TextFor picks the fill value for a free-text question by inspecting the
// lowercased heading: email synthesis wins over name synthesis, anything
// else gets a random phrase.
func (g *Generator) TextFor(heading string) string {
	switch {
	case strings.Contains(heading, "email"):
		return g.Email()
	case strings.Contains(heading, "name"):
		return g.FullName()
	default:
		return g.Phrase()
	}
}

// eligible drops sentinel options unless that would empty the list.
func eligible(opts []Option) []Option {
	kept := make([]Option, 0, len(opts))
	for _, o := range opts {
		if !o.Sentinel {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		return opts
	}
	return kept
}

// PickOne chooses one option uniformly at random, avoiding sentinels when a
// real choice exists. ok is false when the list is empty.
func (g *Generator) PickOne(opts []Option) (Option, bool) {
	if len(opts) == 0 {
		return Option{}, false
	}
	pool := eligible(opts)
	return pool[g.rng.Intn(len(pool))], true
}

// ParseSelectionLimit extracts N from a "select top N" instruction in the
// heading. Only the first whitespace-delimited token after the phrase is
// considered, so trailing punctuation ("select top 3.") fails the parse and
// the caller falls back to the default heuristic.
func ParseSelectionLimit(heading string) (int, error) {
	lowered := strings.ToLower(heading)
	idx := strings.Index(lowered, selectTopPhrase)
	if idx < 0 {
		return 0, fmt.Errorf("heading does not contain %q", selectTopPhrase)
	}
	rest := strings.Fields(lowered[idx+len(selectTopPhrase):])
	if len(rest) == 0 {
		return 0, fmt.Errorf("no token follows %q", selectTopPhrase)
	}
	limit, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("token %q is not an integer: %w", rest[0], err)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("selection limit %d is not positive", limit)
	}
	return limit, nil
}

// PickSeveral chooses k distinct options uniformly without replacement.
// k comes from the heading's "select top N" instruction when parseable,
// otherwise from a random default in [1, min(3, eligible)], and is always
// clamped to the eligible count. Sentinels are excluded unless they are the
// only options. An empty list yields an empty selection.
func (g *Generator) PickSeveral(heading string, opts []Option) []Option {
	if len(opts) == 0 {
		return nil
	}
	pool := eligible(opts)

	var k int
	if limit, err := ParseSelectionLimit(heading); err == nil {
		k = limit
	} else {
		g.logger.Warn("Could not parse selection limit from heading, using default",
			zap.String("heading", heading),
			zap.Error(err))
		k = 1 + g.rng.Intn(minInt(defaultMaxSelections, len(pool)))
	}
	if k > len(pool) {
		k = len(pool)
	}

	perm := g.rng.Perm(len(pool))
	chosen := make([]Option, k)
	for i := 0; i < k; i++ {
		chosen[i] = pool[perm[i]]
	}
	return chosen
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
