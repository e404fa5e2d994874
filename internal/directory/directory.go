// Package directory holds the immutable stock directory and resolves raw
// stock identifiers against it.
package directory

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// DefaultOtherSector is the sector given to names the directory cannot place.
const DefaultOtherSector = "其他"

// Directory is a code↔name↔sector↔alias table. It is built once and never
// mutated, so it is safe for concurrent use.
type Directory struct {
	byCode  map[string]models.StockIdentity
	byName  map[string]string // folded name -> current code
	retired map[string]string // superseded code -> canonical name
	aliases map[string]string // folded alias -> canonical name
	sectors map[string]string // folded name -> sector, names with no code
	other   string
}

var _ interfaces.Resolver = (*Directory)(nil)

// Rename maps a former name onto the canonical name now in use.
type Rename struct {
	From string `toml:"from" yaml:"from"`
	To   string `toml:"to" yaml:"to"`
}

// Option configures a Directory under construction
type Option func(*builder)

type builder struct {
	stocks  []models.StockIdentity
	renames []Rename
	sectors [][2]string
	other   string
}

// WithStocks appends coded entries. When two entries share a name the later
// one is the current listing and the earlier code is retired.
func WithStocks(stocks ...models.StockIdentity) Option {
	return func(b *builder) { b.stocks = append(b.stocks, stocks...) }
}

// WithRenames adds former-name aliases.
func WithRenames(renames ...Rename) Option {
	return func(b *builder) { b.renames = append(b.renames, renames...) }
}

// WithSectors adds name to sector hints for names that have no code.
func WithSectors(pairs map[string]string) Option {
	return func(b *builder) {
		names := make([]string, 0, len(pairs))
		for n := range pairs {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			b.sectors = append(b.sectors, [2]string{n, pairs[n]})
		}
	}
}

// WithOtherSector overrides the sector sentinel for unresolved names.
func WithOtherSector(sector string) Option {
	return func(b *builder) {
		if sector != "" {
			b.other = sector
		}
	}
}

// WithSeed includes the built-in directory tables.
func WithSeed() Option {
	return func(b *builder) {
		b.stocks = append(b.stocks, seedStocks...)
		b.sectors = append(b.sectors, seedSectors...)
	}
}

// New builds a Directory from the given options.
func New(opts ...Option) *Directory {
	b := &builder{other: DefaultOtherSector}
	for _, opt := range opts {
		opt(b)
	}

	d := &Directory{
		byCode:  make(map[string]models.StockIdentity),
		byName:  make(map[string]string),
		retired: make(map[string]string),
		aliases: make(map[string]string),
		sectors: make(map[string]string),
		other:   b.other,
	}

	for _, s := range b.stocks {
		s.Code = strings.TrimSpace(s.Code)
		s.Name = Clean(s.Name)
		if s.Code == "" || s.Name == "" {
			continue
		}
		if s.Sector == "" {
			s.Sector = d.other
		}

		// A code re-declared under a new name drops its old name mapping.
		if prev, ok := d.byCode[s.Code]; ok && fold(prev.Name) != fold(s.Name) {
			if d.byName[fold(prev.Name)] == s.Code {
				delete(d.byName, fold(prev.Name))
			}
		}
		// A name re-declared under a new code retires the old code.
		if oldCode, ok := d.byName[fold(s.Name)]; ok && oldCode != s.Code {
			delete(d.byCode, oldCode)
			d.retired[oldCode] = s.Name
		}
		delete(d.retired, s.Code)

		s.Aliases = cleanAll(s.Aliases)
		d.byCode[s.Code] = s
		d.byName[fold(s.Name)] = s.Code
		for _, a := range s.Aliases {
			d.aliases[fold(a)] = s.Name
		}
	}

	for _, r := range b.renames {
		from, to := Clean(r.From), Clean(r.To)
		if from == "" || to == "" || fold(from) == fold(to) {
			continue
		}
		d.aliases[fold(from)] = to
	}
	d.collapseAliases()

	for _, p := range b.sectors {
		name := Clean(p[0])
		if name == "" || p[1] == "" {
			continue
		}
		if _, coded := d.byName[fold(name)]; coded {
			continue
		}
		d.sectors[fold(name)] = p[1]
	}

	return d
}

// collapseAliases points every alias at the end of its rename chain so a
// single lookup reaches the canonical name. Names caught in a rename cycle
// lose their aliases and resolve as themselves.
func (d *Directory) collapseAliases() {
	final := make(map[string]string, len(d.aliases))
	for key, target := range d.aliases {
		seen := map[string]bool{key: true}
		for {
			next, ok := d.aliases[fold(target)]
			if !ok || seen[fold(target)] {
				break
			}
			seen[fold(target)] = true
			target = next
		}
		final[key] = target
	}
	var cyclic []string
	for key, target := range final {
		if _, ok := final[fold(target)]; ok {
			cyclic = append(cyclic, key)
		}
	}
	for _, key := range cyclic {
		delete(final, key)
	}
	d.aliases = final
}

// NewDefault builds a Directory from the built-in tables only.
func NewDefault() *Directory {
	return New(WithSeed())
}

// OtherSector returns the sector sentinel for unresolved names.
func (d *Directory) OtherSector() string {
	return d.other
}

// Len returns the number of current coded entries.
func (d *Directory) Len() int {
	return len(d.byCode)
}

// Entries returns the current coded entries ordered by code.
func (d *Directory) Entries() []models.StockIdentity {
	out := make([]models.StockIdentity, 0, len(d.byCode))
	for _, s := range d.byCode {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Codes returns the current codes in ascending order.
func (d *Directory) Codes() []string {
	entries := d.Entries()
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return codes
}

// ByCode returns the identity for a code. A retired code returns the
// identity currently holding its name.
func (d *Directory) ByCode(code string) (models.StockIdentity, bool) {
	code = strings.TrimSpace(code)
	if s, ok := d.byCode[code]; ok {
		return s, true
	}
	if name, ok := d.retired[code]; ok {
		return d.ByName(name)
	}
	return models.StockIdentity{}, false
}

// ByName returns the identity whose canonical name matches.
func (d *Directory) ByName(name string) (models.StockIdentity, bool) {
	code, ok := d.byName[fold(Clean(name))]
	if !ok {
		return models.StockIdentity{}, false
	}
	s, ok := d.byCode[code]
	return s, ok
}

// Resolve normalises raw and looks it up. resolve(resolve(x).Name) equals
// resolve(x) for every input.
func (d *Directory) Resolve(raw string) models.Resolution {
	name := Clean(raw)
	if name == "" {
		return models.Resolution{Sector: d.other}
	}
	if canonical, ok := d.aliases[fold(name)]; ok {
		name = canonical
	}

	if isDigits(name) {
		if s, ok := d.ByCode(name); ok {
			return resolved(s)
		}
		return models.Resolution{Name: name, Sector: d.other}
	}

	if s, ok := d.ByName(name); ok {
		return resolved(s)
	}
	if sector, ok := d.sectors[fold(name)]; ok {
		return models.Resolution{Name: name, Sector: sector, Found: true}
	}
	return models.Resolution{Name: name, Sector: d.other}
}

// Sector is shorthand for Resolve(raw).Sector.
func (d *Directory) Sector(raw string) string {
	return d.Resolve(raw).Sector
}

func resolved(s models.StockIdentity) models.Resolution {
	return models.Resolution{Code: s.Code, Name: s.Name, Sector: s.Sector, Found: true}
}

// Clean strips CB markers, asterisks and all whitespace from a raw identifier.
func Clean(raw string) string {
	s := models.ParseMention(raw).Name
	return strings.Map(func(r rune) rune {
		if r == '*' || r == '＊' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func cleanAll(in []string) []string {
	var out []string
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// fold is the lookup key: ASCII letters are case-insensitive.
func fold(s string) string {
	return strings.ToUpper(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
