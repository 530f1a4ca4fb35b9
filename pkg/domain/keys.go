package domain

// Attribute keys as they appear in upstream records.
const (
	KeyGUID                = "Guid"
	KeyFirstname           = "Firstname"
	KeyLastname            = "Lastname"
	KeyKnownAs             = "KnownAs"
	KeyDOB                 = "DOB"
	KeyGender              = "Gender"
	KeyEmail               = "Email"
	KeyUsername            = "Username"
	KeyLastLoggedIn        = "LastLoggedIn"
	KeyLastModified        = "LastModifiedDate"
	KeyDateJoined          = "DateJoinedClub"
	KeyDateLeft            = "DateLeft"
	KeyConfirmedDate       = "DetailsConfirmedCorrect"
	KeyIsASwimmer          = "IsASwimmer"
	KeyIsACoach            = "IsACoach"
	KeyIsAParent           = "IsAParent"
	KeyIsAVolunteer        = "IsAVolunteer"
	KeyWaterPolo           = "WaterPolo"
	KeySynchro             = "SynchronisedSwimming"
	KeyOpenWater           = "OpenWater"
	KeyCommittee           = "CommitteeMember"
	KeyJobTitle            = "JobTitle"
	KeyDBSRenewal          = "DBSRenewalDate"
	KeySafeguardRenewal    = "SafeguardingRenewalDate"
	KeyNotes               = "Notes"
	KeyASANumber           = "ASANumber"
	KeyASACategory         = "ASACategory"
	KeyActive              = "Active"
	KeyArchived            = "Archived"
	KeyMembers             = "Members"
	KeyParents             = "Parents"
	KeySwimmers            = "Swimmers"
	KeyCoaches             = "Coaches"
	KeySessionRestrictions = "SessionRestrictions"
	KeyLastAttended        = "LastAttended"
	KeyGroupName           = "GroupName"
	KeySessionName         = "SessionName"
	KeyRoleName            = "RoleName"
	KeyListName            = "ListName"
	KeyTitle               = "Title"
	KeyWeekDay             = "WeekDay"
	KeySessionLocation     = "SessionLocation"
	KeyStartTime           = "StartTime"
	KeyMaxMembers          = "MaxMembers"
	KeyDateAgreed          = "DateAgreed"
	KeyHomePhone           = "HomePhone"
	KeyMobilePhone         = "MobilePhone"
	KeyAddress             = "Address1"
)
