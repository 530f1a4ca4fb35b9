package domain

// MemberType names one of the member role facets a configuration entry
// can demand (group type correlation, conduct applicability, generated
// list criteria).
type MemberType string

// The member types recognised in configuration documents.
const (
	TypeSwimmer   MemberType = "swimmer"
	TypeSynchro   MemberType = "synchro"
	TypeCoach     MemberType = "coach"
	TypeCommittee MemberType = "committee"
	TypeOpenWater MemberType = "openwater"
	TypeParent    MemberType = "parent"
	TypeWaterPolo MemberType = "waterpolo"
	TypeVolunteer MemberType = "volunteer"
)

// MemberTypes lists every recognised member type.
var MemberTypes = []MemberType{
	TypeSwimmer,
	TypeSynchro,
	TypeCoach,
	TypeCommittee,
	TypeOpenWater,
	TypeParent,
	TypeWaterPolo,
	TypeVolunteer,
}

// ValidMemberType reports whether s names a recognised member type.
func ValidMemberType(s string) bool {
	for _, t := range MemberTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}
