package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// Notes field tokens: Facebook names for the social-media cross check,
// and "API:" exception tokens with an optional expiry date.
var (
	facebookRE  = regexp.MustCompile(`Facebook: *([a-zA-Z\- ]+)`)
	apiLineRE   = regexp.MustCompile(`API:.+`)
	apiTextRE   = regexp.MustCompile(`API: *[a-zA-Z ]+`)
	dateDashRE  = regexp.MustCompile(`\d\d-\d\d-\d\d\d\d`)
	dateSlashRE = regexp.MustCompile(`\d\d/\d\d/\d\d\d\d`)
)

// Member is one person in the club records, with their dates parsed,
// notes tokens extracted and cross-reference links resolved by the
// linkage pass.
type Member struct {
	entity

	clock domain.Clock

	dob          time.Time
	joined       time.Time
	lastModified time.Time
	confirmed    time.Time
	lastLogin    time.Time

	hasDOB          bool
	hasJoined       bool
	hasLastModified bool
	hasConfirmed    bool
	hasLastLogin    bool

	facebook   []string
	exceptions []string

	groups        []*Group
	sessions      []*Session
	coachSessions []*Session
	conducts      []*Conduct
	parents       []*Member
	swimmers      []*Member
	restricted    []*Session

	firstGroup *Group

	lastSeen    time.Time
	hasLastSeen bool

	inCoachRole   bool
	noSessionOK   bool
	ignoreGroup   bool
	ignoreSwimmer bool
	isNewStarter  bool
}

func newMember(rec domain.Record, d *Dataset) *Member {
	m := &Member{
		entity: entity{raw: rec, resource: ResourceMembers},
		clock:  d.clock,
	}
	m.name = fmt.Sprintf("%s %s", rec.Str(domain.KeyFirstname), rec.Str(domain.KeyLastname))

	m.dob, m.hasDOB = rec.Date(domain.KeyDOB)
	m.joined, m.hasJoined = rec.Date(domain.KeyDateJoined)
	m.lastModified, m.hasLastModified = rec.Date(domain.KeyLastModified)
	m.confirmed, m.hasConfirmed = rec.Date(domain.KeyConfirmedDate)
	m.lastLogin, m.hasLastLogin = rec.Date(domain.KeyLastLoggedIn)

	if grace := d.policy.IntOr(0, "members", "newstarter", "grace"); grace > 0 && m.hasJoined {
		m.isNewStarter = d.clock.NewStarter(m.joined, grace)
	}

	m.parseNotes(d)
	return m
}

// parseNotes extracts Facebook names and exception tokens from the Notes
// attribute. A token with a future (or absent) expiry date suppresses one
// issue category; an expired token is ignored; a malformed date is itself
// an issue.
func (m *Member) parseNotes(d *Dataset) {
	notes := m.raw.Str(domain.KeyNotes)
	if notes == "" {
		return
	}

	for _, match := range facebookRE.FindAllStringSubmatch(notes, -1) {
		name := strings.TrimSpace(match[1])
		m.facebook = append(m.facebook, name)
		d.ledger.Debugf(8, "Found Facebook name in notes '%s'", name)
	}

	for _, line := range apiLineRE.FindAllString(notes, -1) {
		token := apiTextRE.FindString(line)
		when := d.clock.Today
		parsed := true
		if s := dateDashRE.FindString(line); s != "" {
			t, err := time.Parse("02-01-2006", s)
			if err != nil {
				parsed = false
			} else {
				when = t
			}
		} else if s := dateSlashRE.FindString(line); s != "" {
			t, err := time.Parse("02/01/2006", s)
			if err != nil {
				parsed = false
			} else {
				when = t
			}
		}
		if !parsed {
			d.ledger.Report(m, domain.BadDate, "Notes: "+line)
			continue
		}
		if token == "" {
			continue
		}
		if d.clock.DaysSince(when) <= 0 {
			m.exceptions = append(m.exceptions, strings.TrimSpace(token))
			d.ledger.Debugf(8, "Found API token in notes %s", line)
		} else {
			d.ledger.Debugf(8, "Token expired %s", line)
		}
	}
}

// FullName prefers the known-as name: "Known (First) Last".
func (m *Member) FullName() string {
	if known := m.raw.Str(domain.KeyKnownAs); known != "" {
		return fmt.Sprintf("%s (%s) %s", known, m.raw.Str(domain.KeyFirstname), m.raw.Str(domain.KeyLastname))
	}
	return m.name
}

// KnownAs returns the name the member goes by, with surname.
func (m *Member) KnownAs() string {
	first := m.raw.Str(domain.KeyFirstname)
	if known := m.raw.Str(domain.KeyKnownAs); known != "" {
		first = known
	}
	return fmt.Sprintf("%s %s", first, m.raw.Str(domain.KeyLastname))
}

// IsActive reports whether the membership is active.
func (m *Member) IsActive() bool {
	return m.raw.Str(domain.KeyActive) == "1"
}

func (m *Member) suppressed(token string) bool {
	for _, t := range m.exceptions {
		if t == token {
			return true
		}
	}
	return false
}

func (m *Member) newStarter() bool {
	return m.isNewStarter
}

func (m *Member) isSwimmer() bool   { return m.raw.Flag(domain.KeyIsASwimmer) }
func (m *Member) isCoach() bool     { return m.raw.Flag(domain.KeyIsACoach) }
func (m *Member) isParent() bool    { return m.raw.Flag(domain.KeyIsAParent) }
func (m *Member) isVolunteer() bool { return m.raw.Flag(domain.KeyIsAVolunteer) }
func (m *Member) isSynchro() bool   { return m.raw.Flag(domain.KeySynchro) }
func (m *Member) isPolo() bool      { return m.raw.Flag(domain.KeyWaterPolo) }
func (m *Member) isCommittee() bool { return m.raw.Flag(domain.KeyCommittee) }

func (m *Member) isType(t domain.MemberType) bool {
	switch t {
	case domain.TypeSwimmer:
		return m.isSwimmer()
	case domain.TypeSynchro:
		return m.isSynchro()
	case domain.TypeCoach:
		return m.isCoach()
	case domain.TypeCommittee:
		return m.isCommittee()
	case domain.TypeOpenWater:
		return m.raw.Flag(domain.KeyOpenWater)
	case domain.TypeParent:
		return m.isParent()
	case domain.TypeWaterPolo:
		return m.isPolo()
	case domain.TypeVolunteer:
		return m.isVolunteer()
	}
	return false
}

// Email returns the member's email address, lower-cased.
func (m *Member) Email() string {
	return strings.ToLower(m.raw.Str(domain.KeyEmail))
}

// Username returns the member's login name.
func (m *Member) Username() string { return m.raw.Str(domain.KeyUsername) }

// Gender returns the recorded gender, "" when unset.
func (m *Member) Gender() string { return m.raw.Str(domain.KeyGender) }

// JobTitle returns the recorded job description.
func (m *Member) JobTitle() string { return m.raw.Str(domain.KeyJobTitle) }

// ASANumber returns the Swim England registration number.
func (m *Member) ASANumber() string { return m.raw.Str(domain.KeyASANumber) }

// ASACategory returns the Swim England registration category.
func (m *Member) ASACategory() string { return m.raw.Str(domain.KeyASACategory) }

// HomePhone returns the recorded home phone number.
func (m *Member) HomePhone() string { return m.raw.Str(domain.KeyHomePhone) }

// MobilePhone returns the recorded mobile number.
func (m *Member) MobilePhone() string { return m.raw.Str(domain.KeyMobilePhone) }

// Address returns the first address line.
func (m *Member) Address() string { return m.raw.Str(domain.KeyAddress) }

// Age returns the member's age in years. ok is false when the date of
// birth is missing or the age rounds to zero, which the checks treat the
// same as unknown.
func (m *Member) Age() (int, bool) {
	if !m.hasDOB {
		return 0, false
	}
	age := m.clock.Age(m.dob)
	return age, age != 0
}

// AgeEOY returns the member's age at the end of the year, with the same
// unknown handling as Age.
func (m *Member) AgeEOY() (int, bool) {
	if !m.hasDOB {
		return 0, false
	}
	age := m.clock.AgeEOY(m.dob)
	return age, age != 0
}

func (m *Member) addGroup(g *Group)          { m.groups = append(m.groups, g) }
func (m *Member) addSession(s *Session)      { m.sessions = append(m.sessions, s) }
func (m *Member) addCoachSession(s *Session) { m.coachSessions = append(m.coachSessions, s) }
func (m *Member) addConduct(c *Conduct)      { m.conducts = append(m.conducts, c) }

func (m *Member) setLastSeen(when time.Time) {
	if !m.hasLastSeen || when.After(m.lastSeen) {
		m.lastSeen = when
		m.hasLastSeen = true
	}
}

func (m *Member) setConfirmed(when time.Time) {
	m.confirmed = when
	m.hasConfirmed = true
}

func (m *Member) findGroup(name string) bool {
	for _, g := range m.groups {
		if g.name == name {
			return true
		}
	}
	return false
}

func (m *Member) findSessionSubstr(substr string) bool {
	for _, s := range m.sessions {
		if strings.Contains(s.name, substr) {
			return true
		}
	}
	return false
}

func (m *Member) hasConduct(code *Conduct) bool {
	for _, c := range m.conducts {
		if c == code {
			return true
		}
	}
	return false
}

// groupNames renders the member's groups for report detail lines.
func (m *Member) groupNames() string {
	if len(m.groups) == 0 {
		return "None"
	}
	names := make([]string, 0, len(m.groups))
	for _, g := range m.groups {
		names = append(names, g.name)
	}
	return strings.Join(names, ", ")
}

func (m *Member) firstGroupName() string {
	if m.firstGroup != nil {
		return m.firstGroup.name
	}
	return "No Group"
}

// link resolves the member's own reference lists.
func (m *Member) link(d *Dataset) {
	for _, ref := range m.raw.RefRecords(domain.KeyParents) {
		guid := ref.Str(domain.KeyGUID)
		p, ok := d.members.ByGUID(guid)
		if !ok {
			d.ledger.Debugf(7, "GUID %s missing in list - email address only?", guid)
			continue
		}
		if guid == m.GUID() {
			d.ledger.Report(m, domain.OwnParent, "")
		}
		m.parents = append(m.parents, p)
	}

	for _, ref := range m.raw.RefRecords(domain.KeySwimmers) {
		s, ok := d.members.ByGUID(ref.Str(domain.KeyGUID))
		if !ok {
			continue
		}
		m.swimmers = append(m.swimmers, s)
	}

	for _, ref := range m.raw.RefRecords(domain.KeySessionRestrictions) {
		s, ok := d.sessions.ByGUID(ref.Str(domain.KeyGUID))
		if !ok {
			continue
		}
		m.restricted = append(m.restricted, s)
	}

	m.firstGroup = m.pickFirstGroup(d)
}

// reconcileParents synthesizes the parent back-link when the upstream
// returns a swimmer link without the matching parent link.
func (m *Member) reconcileParents(d *Dataset) {
	for _, s := range m.swimmers {
		if len(s.parents) == 0 {
			d.ledger.Debugf(7, "Found swimmer - API error - recovered %s", s.Name())
			s.parents = append(s.parents, m)
		}
	}
}

// pickFirstGroup selects the group used as the member's primary group in
// report text, honouring the configured group priority order.
func (m *Member) pickFirstGroup(d *Dataset) *Group {
	if d.policy.Get("groups") == nil {
		if len(m.groups) > 0 {
			return m.groups[0]
		}
		return nil
	}
	priorities := d.policy.StrList("groups", "priority")
	if len(m.groups) == 0 || len(priorities) == 0 {
		return nil
	}
	for _, g := range m.groups {
		for _, p := range priorities {
			if g.name == p {
				return g
			}
		}
	}
	return m.groups[0]
}

func (m *Member) checkAgeRange(d *Dataset, minAge, maxAge int, group string) {
	age, ok := m.Age()
	if !ok {
		return
	}
	if age < minAge {
		d.ledger.Report(m, domain.TooYoung, fmt.Sprintf("%s: %d", group, age))
	}
	if age > maxAge && !m.isCoach() {
		d.ledger.Report(m, domain.TooOld, fmt.Sprintf("%s: %d", group, age))
	}
}

func (m *Member) checkEmail(d *Dataset) {
	email := m.Email()
	if email == "" {
		if m.suppressed(config.ExceptionNoEmail) {
			return
		}
		d.ledger.Report(m, domain.NoEmail, m.firstGroupName())
		return
	}
	if strings.Contains(email, " ") {
		d.ledger.Report(m, domain.EmailSpace, email)
	}
}

func (m *Member) checkDBS(d *Dataset, role string) {
	if m.suppressed(config.ExceptionNoDBS) {
		d.ledger.Debugf(7, "DBS Exception ignored: %s", m.Name())
		return
	}

	notice := d.policy.IntOr(60, "members", "dbs", "expiry")

	if dbs, ok := m.raw.Date(domain.KeyDBSRenewal); ok {
		left := d.clock.DaysUntil(dbs)
		if left < 0 {
			d.ledger.Report(m, domain.DBSExpired, fmt.Sprintf("%s, expired %s", role, dbs.Format(domain.PrintDateFormat)))
		} else if left < notice {
			d.ledger.Report(m, domain.DBSExpired, fmt.Sprintf("%s, expires %s", role, dbs.Format(domain.PrintDateFormat)))
		}
	} else {
		d.ledger.Report(m, domain.NoDBS, role)
	}

	if m.suppressed(config.ExceptionNoSafeguard) {
		d.ledger.Debugf(7, "Safeguard Exception ignored: %s", m.Name())
		return
	}

	if safe, ok := m.raw.Date(domain.KeySafeguardRenewal); ok {
		left := d.clock.DaysUntil(safe)
		if left < 0 {
			d.ledger.Report(m, domain.SafeguardExpired, fmt.Sprintf("%s, expired %s", role, safe.Format(domain.PrintDateFormat)))
		} else if left < notice {
			d.ledger.Report(m, domain.SafeguardExpired, fmt.Sprintf("%s, expires %s", role, safe.Format(domain.PrintDateFormat)))
		}
	} else {
		d.ledger.Report(m, domain.NoSafeguard, role)
	}
}

func (m *Member) checkInactive(d *Dataset) {
	if m.hasLastModified {
		if limit, ok := d.policy.Int("members", "inactive", "time"); ok && d.clock.DaysSince(m.lastModified) > limit {
			d.ledger.Report(m, domain.InactiveTooLong, "Last Modified: "+m.lastModified.Format(domain.PrintDateFormat))
		}
	}

	if m.raw.Has(domain.KeyDateLeft) {
		return
	}

	if m.hasLastModified {
		d.ledger.ReportLevel(m, domain.NoLeaveDate, "fixable", domain.LevelAlways, "")
		left := m.lastModified.Format(domain.DateFormat)
		d.fixes.Stage(m, domain.Record{domain.KeyDateLeft: left}, "Add dataleft = "+left)
		return
	}
	d.ledger.ReportLevel(m, domain.NoLeaveDate, "", domain.LevelAlways, "")
}

func (m *Member) checkConfirmation(d *Dataset) {
	expiry := d.policy.IntOr(365, "members", "confirmation", "expiry")
	offset := 0
	if d.policy.IsTrue("members", "confirmation", "align_quarter") {
		offset = d.clock.QuarterOffset
	}
	feed := d.policy.IsTrue("lists", "confirmation")

	if m.hasConfirmed {
		if d.clock.DaysSince(m.confirmed) > expiry+offset {
			d.ledger.Report(m, domain.ConfirmExpired, m.firstGroupName())
			d.members.notConfirmed++
			if feed {
				m.feedConfirmationList(d, true)
			}
		}
		return
	}

	d.ledger.Report(m, domain.NotConfirmed, m.firstGroupName())
	d.members.notConfirmed++
	if feed {
		m.feedConfirmationList(d, false)
	}
}

func (m *Member) feedConfirmationList(d *Dataset, expired bool) {
	msg := "Not confirmed"
	if expired {
		msg = "Confirmation expired"
	}

	suffix := " (Other)"
	if m.isParent() {
		suffix = " (Parent)"
	}
	if m.isPolo() {
		suffix = " (Water Polo)"
		if name := d.policy.Str("types", "waterpolo", "name"); name != "" {
			suffix = " (" + name + ")"
		}
	}
	if m.isSynchro() {
		suffix = " (Synchro)"
		if name := d.policy.Str("types", "synchro", "name"); name != "" {
			suffix = " (" + name + ")"
		}
	}
	if m.isSwimmer() {
		suffix = " (Swimmer)"
	}

	d.feedList(msg+suffix, m)
}

func (m *Member) checkName(d *Dataset) {
	first := m.raw.Str(domain.KeyFirstname)
	last := m.raw.Str(domain.KeyLastname)
	known := m.raw.Str(domain.KeyKnownAs)

	firstUpper := leadingUpper(first)
	lastUpper := leadingUpper(last)
	knownUpper := true
	if known != "" {
		knownUpper = leadingUpper(known)
	}

	if firstUpper && lastUpper && knownUpper {
		return
	}

	if !firstUpper || !lastUpper {
		d.ledger.ReportLevel(m, domain.NameCapital, "fixable", domain.LevelAlways, "")
		fix := domain.Record{}
		if !firstUpper {
			fix[domain.KeyFirstname] = titleCase(first)
		}
		if !lastUpper {
			fix[domain.KeyLastname] = titleCase(last)
		}
		if !knownUpper {
			fix[domain.KeyKnownAs] = titleCase(known)
		}
		d.fixes.Stage(m, fix, "Capitalisation of name")
		return
	}

	d.ledger.ReportLevel(m, domain.NameCapital, "Knownas = "+known, domain.LevelAlways, "fixable")
	d.fixes.Stage(m, domain.Record{domain.KeyKnownAs: titleCase(known)}, "Capitalisation of "+known)
}

// checkType verifies the member is in a group required for one of their
// type check boxes, and carries a job title where the type demands one.
func (m *Member) checkType(d *Dataset, t domain.MemberType) {
	key := string(t)
	groups := d.policy.StrList("types", key, "groups")
	name := d.policy.Str("types", key, "name")
	if name == "" {
		name = key
	}

	if len(groups) > 0 {
		found := false
		for _, g := range groups {
			if m.findGroup(g) {
				found = true
				break
			}
		}
		if !found && !m.ignoreGroup && !m.ignoreSwimmer {
			d.ledger.Report(m, domain.TypeGroup, name)
		}
	}

	if d.policy.IsTrue("types", key, "jobtitle") {
		if m.JobTitle() != "" {
			return
		}
		d.ledger.ReportLevel(m, domain.NoJobTitle, name, domain.LevelNormal, "fixable")
		d.fixes.Stage(m, domain.Record{domain.KeyJobTitle: titleCase(key)}, "Add jobtitle: "+name)
	}
}

// analyse runs every member-level rule. Inactive members only get the
// archival checks; new starters only the name and coach checks.
func (m *Member) analyse(d *Dataset) {
	if !m.IsActive() {
		m.checkInactive(d)
		return
	}

	m.checkName(d)

	found := false

	if m.isCoach() {
		m.checkType(d, domain.TypeCoach)
		analyseCoach(d, m)
		found = true
	}

	if m.newStarter() {
		return
	}

	if m.isSwimmer() {
		m.checkType(d, domain.TypeSwimmer)
		found = true
	}
	if m.isSynchro() {
		m.checkType(d, domain.TypeSynchro)
		found = true
	}
	if m.isPolo() {
		m.checkType(d, domain.TypeWaterPolo)
		found = true
	}
	if m.isSwimmer() || m.isPolo() || m.isSynchro() {
		analyseSwimmer(d, m)
	}

	if m.isParent() {
		m.checkType(d, domain.TypeParent)
		analyseParent(d, m)
		found = true
	}

	if m.isVolunteer() {
		ignoreCoach := d.policy.IsTrue("types", "volunteer", "ignore_coach")
		ignoreCommittee := d.policy.IsTrue("types", "volunteer", "ignore_committee")
		if !ignoreCoach && !ignoreCommittee && !m.isCoach() {
			m.checkType(d, domain.TypeVolunteer)
		}
		found = true
	}

	if m.isCommittee() {
		found = true
		m.checkType(d, domain.TypeCommittee)
	}

	if title := m.JobTitle(); title != "" {
		if !m.isVolunteer() && !m.isCommittee() && !m.isCoach() {
			ignored := false
			for _, skip := range d.policy.StrList("jobtitle", "ignore") {
				if title == skip {
					ignored = true
					break
				}
			}
			if !ignored {
				d.ledger.Report(m, domain.JobNotVolunteer, title)
			}
		}
	}

	if found {
		if m.ignoreSwimmer {
			return
		}
		m.checkEmail(d)
		m.checkConfirmation(d)
		checkConduct(d, m)
		return
	}

	for _, g := range m.groups {
		if d.policy.IsTrue("groups", "group", g.name, "ignore_unknown") {
			continue
		}
		d.ledger.Report(m, domain.Unknown, "")
	}
}

func leadingUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return true
}

// titleCase upper-cases the first letter of each word and lower-cases
// the rest.
func titleCase(s string) string {
	var b strings.Builder
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
		} else {
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}
