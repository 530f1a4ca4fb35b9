package domain

// Category groups issue kinds into the sections of the final report.
type Category string

// Report categories, in the order sections appear in the rendered report.
const (
	CategoryMembers      Category = "members"
	CategoryCoaches      Category = "coaches"
	CategoryDBS          Category = "dbs"
	CategoryGroups       Category = "groups"
	CategorySessions     Category = "sessions"
	CategoryLists        Category = "lists"
	CategoryRoles        Category = "roles"
	CategoryConfirmation Category = "confirmation"
)

// Categories lists all report categories in render order.
var Categories = []Category{
	CategoryMembers,
	CategoryCoaches,
	CategoryDBS,
	CategoryGroups,
	CategorySessions,
	CategoryLists,
	CategoryRoles,
	CategoryConfirmation,
}

// CategoryTitles maps each category to its report heading.
var CategoryTitles = map[Category]string{
	CategoryMembers:      "Members Report",
	CategoryCoaches:      "Coaches Report",
	CategoryDBS:          "DBS Report",
	CategoryGroups:       "Groups Report",
	CategorySessions:     "Sessions Report",
	CategoryLists:        "Lists Report",
	CategoryRoles:        "Roles Report",
	CategoryConfirmation: "Confirmation Report",
}

// Priority levels attached to reported issues. A level above the
// configured debug level is dropped; LevelAlways bypasses suppression
// gates entirely.
const (
	LevelAlways    = -1
	LevelNormal    = 0
	LevelIgnorable = 9
)

// Kind is one named class of data-quality finding. Reverse controls
// detail ordering in the by-kind report: freshness-ranked kinds list the
// detail line first so the most recent entries group together.
type Kind struct {
	Name     string
	Message  string
	Reverse  bool
	Category Category
}

// The issue taxonomy.
var (
	Absent             = &Kind{"E_ABSENT", "Absent", false, CategoryMembers}
	NoSENumber         = &Kind{"E_ASA", "No Swim England number", false, CategoryMembers}
	CoachWithSessions  = &Kind{"E_COACH_WITH_SESSIONS", "Coach with swim sessions in profile", false, CategoryCoaches}
	CoachRole          = &Kind{"E_COACH_ROLE", "In coach role, but not a coach", false, CategoryRoles}
	ConfirmDiff        = &Kind{"E_CONFIRM_DIFF", "Difference in confirmation dates", false, CategoryConfirmation}
	ConfirmExpired     = &Kind{"E_CONFIRMATION_EXPIRED", "Confirmation expired", true, CategoryConfirmation}
	BadDate            = &Kind{"E_DATE", "Error in date format", false, CategoryMembers}
	NoDateJoined       = &Kind{"E_DATE_JOINED", "No date joined", false, CategoryMembers}
	DBSExpired         = &Kind{"E_DBS_EXPIRED", "DBS Expiring/Expired", false, CategoryDBS}
	NoDOB              = &Kind{"E_DOB", "No date of birth", false, CategoryMembers}
	Duplicate          = &Kind{"E_DUPLICATE", "Duplicate user", false, CategoryMembers}
	EmailMatch         = &Kind{"E_EMAIL_MATCH", "Swimmers email does not match parents", false, CategoryMembers}
	EmailSpace         = &Kind{"E_EMAIL_SPACE", "Space in email", false, CategoryMembers}
	NoGender           = &Kind{"E_GENDER", "No Gender", false, CategoryMembers}
	Inactive           = &Kind{"E_INACTIVE", "Inactive", false, CategoryMembers}
	InactiveTooLong    = &Kind{"E_INACTIVE_TOOLONG", "Inactive for too long - consider archiving", false, CategoryMembers}
	JobNotVolunteer    = &Kind{"E_JOB", "Job description but not a volunteer", false, CategoryMembers}
	ListError          = &Kind{"E_LIST_ERROR", "Error in email list", false, CategoryLists}
	LoginTooYoung      = &Kind{"E_LOGIN_TOO_YOUNG", "Swimmer with login: too young", false, CategoryMembers}
	NameCapital        = &Kind{"E_NAME_CAPITAL", "Check name capitilisation", false, CategoryMembers}
	NeverSeen          = &Kind{"E_NEVERSEEN", "Never seen", false, CategoryMembers}
	NeverAttended      = &Kind{"E_NEVER_ATTENDED", "Never attended", true, CategorySessions}
	NoChild            = &Kind{"E_NO_CHILD", "Parent, no children", false, CategoryMembers}
	NoCoach            = &Kind{"E_NO_COACH", "No coach", false, CategoryCoaches}
	NoConduct          = &Kind{"E_NO_CONDUCT", "Code of Conduct missing", true, CategoryConfirmation}
	NoConductDate      = &Kind{"E_NO_CONDUCT_DATE", "Code of Conduct not signed", true, CategoryConfirmation}
	NoDBS              = &Kind{"E_NO_DBS", "No DBS", false, CategoryDBS}
	NoEmail            = &Kind{"E_NO_EMAIL", "No email address", false, CategoryMembers}
	NoGroup            = &Kind{"E_NO_GROUP", "Swimmer with no group", false, CategoryGroups}
	NoJobTitle         = &Kind{"E_NO_JOB", "No job description", false, CategoryRoles}
	NoLeaveDate        = &Kind{"E_NO_LEAVE_DATE", "Inactive member with no leaving date", false, CategoryMembers}
	NoLogin            = &Kind{"E_NO_LOGIN", "No login", false, CategoryMembers}
	NoParent           = &Kind{"E_NO_PARENT", "Swimmer with no parent", false, CategoryMembers}
	NoRegister         = &Kind{"E_NO_REGISTER", "Register not taken", false, CategorySessions}
	NoRestrictions     = &Kind{"E_NO_RESTRICTIONS", "In role with no restrictions", false, CategoryRoles}
	NoCoachRole        = &Kind{"E_NO_ROLE_COACH", "Coach not in a coach role", false, CategoryRoles}
	NoSafeguard        = &Kind{"E_NO_SAFEGUARD", "No Safeguarding", false, CategoryDBS}
	NoSessions         = &Kind{"E_NO_SESSIONS", "Coach with no sessions", false, CategoryCoaches}
	NoMembers          = &Kind{"E_NO_SWIMMERS", "No swimmers", false, CategorySessions}
	NotACoach          = &Kind{"E_NOT_A_COACH", "Not a coach, but in coach role", false, CategoryRoles}
	NotAttended        = &Kind{"E_NOT_ATTENDED", "Swimmer not attended a session for given period of time", true, CategorySessions}
	NotConfirmed       = &Kind{"E_NOT_CONFIRMED", "Not confirmed", true, CategoryConfirmation}
	NotInSession       = &Kind{"E_NOT_IN_SESSION", "Member not is any sessions for the group", true, CategoryGroups}
	NotInGroup         = &Kind{"E_NOT_IN_GROUP", "Member not in group required for the session", true, CategoryGroups}
	TypeGroup          = &Kind{"E_TYPE_GROUP", "Member not in group required for the type", true, CategoryGroups}
	TooManyParents     = &Kind{"E_NUM_PARENTS", "More than two parents", false, CategoryMembers}
	OwnParent          = &Kind{"E_OWNPARENT", "Swimmer is own parent", false, CategoryMembers}
	ParentTooYoung     = &Kind{"E_PARENT_AGE", "Parent too young", false, CategoryMembers}
	ChildTooOld        = &Kind{"E_PARENT_AGE_TOO_OLD", "Child too old to have parent", false, CategoryMembers}
	PermissionExtra    = &Kind{"E_PERMISSION_EXTRA", "Extra session permission", false, CategoryRoles}
	PermissionMissing  = &Kind{"E_PERMISSION_MISSING", "Missing permission", false, CategoryRoles}
	SafeguardExpired   = &Kind{"E_SAFEGUARD_EXPIRED", "Safeguarding Expiring/Expired", false, CategoryDBS}
	UnexpectedSessions = &Kind{"E_SESSIONS", "Members has session, but in no sessions group", true, CategorySessions}
	TooOld             = &Kind{"E_TOO_OLD", "Too old for group", false, CategoryGroups}
	TooYoung           = &Kind{"E_TOO_YOUNG", "Too young for group", false, CategoryGroups}
	TooManyMembers     = &Kind{"E_TOO_MANY_SWIMMERS", "Too many swimmers in session", false, CategorySessions}
	TwoGroups          = &Kind{"E_TWO_GROUPS", "Swimmers in two groups", true, CategoryGroups}
	WrongType          = &Kind{"E_TYPE", "swimmer has wrong type for group", false, CategoryGroups}
	Unknown            = &Kind{"E_UNKNOWN", "Not a swimmers/parent/coach/official.  Who are they?", false, CategoryMembers}
	UnusedLogin        = &Kind{"E_UNUSED_LOGIN", "Login not used", false, CategoryRoles}
	NotVolunteer       = &Kind{"E_VOLUNTEER", "Not marked as a volunteer", false, CategoryRoles}
)

// Kinds lists the whole taxonomy.
var Kinds = []*Kind{
	Absent, NoSENumber, CoachRole, CoachWithSessions, ConfirmDiff,
	ConfirmExpired, BadDate, NoDateJoined, DBSExpired, NoDOB, Duplicate,
	EmailMatch, EmailSpace, NoGender, Inactive, InactiveTooLong,
	JobNotVolunteer, ListError, LoginTooYoung, NameCapital, NeverAttended,
	NeverSeen, NoChild, NoCoach, NoConduct, NoConductDate, NoDBS, NoEmail,
	NoGroup, NoJobTitle, NoLeaveDate, NoLogin, NoParent, NoRegister,
	NoRestrictions, NoCoachRole, NoSafeguard, NoSessions, NoMembers,
	NotACoach, NotAttended, NotConfirmed, NotInGroup, NotInSession,
	TooManyParents, OwnParent, ParentTooYoung, ChildTooOld,
	PermissionExtra, PermissionMissing, SafeguardExpired,
	UnexpectedSessions, TooOld, TooYoung, TooManyMembers, TwoGroups,
	WrongType, TypeGroup, Unknown, UnusedLogin, NotVolunteer,
}

// KindByName resolves a taxonomy entry from its configuration name.
func KindByName(name string) *Kind {
	for _, k := range Kinds {
		if k.Name == name {
			return k
		}
	}
	return nil
}
