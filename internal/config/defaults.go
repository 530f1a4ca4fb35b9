package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Locations of the tool's state under the user's home directory.
const (
	Dir      = "scm-helper"
	FileName = "config.yaml"
)

// Path returns the expected configuration file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(home, Dir, FileName), nil
}

// WriteDefault creates a starter configuration for the named club at
// path. It refuses to overwrite an existing file.
func WriteDefault(path, club string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := strings.ReplaceAll(defaultConfig, "###CLUB_NAME###", club)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

const defaultConfig = `#############################################
# Configuration of SCM-Helper
#
# Adjust these parameters to reflect the
# situation at your club.
#############################################

# Your swimming club name.
club: "###CLUB_NAME###"

# Set to true if this tool is allowed to edit SCM.
allow_update: false

# Debug level, set to 0 for no debug info.
debug_level: 0

#############################################
# Swimmer checks
#############################################
swimmers:
  username:
    min_age: 17     # Min age to have a user name
  parent:
    mandatory: true # Must have a parent
    max_age: 17     # Age a parent is mandatory until
  confirmation_difference:
    verify: true    # Report if confirm dates of parent and child differ by a quarter
  absence:
    time: 182       # Warn if not seen at swimming for this period of time

#############################################
# Parent checks
#############################################
parents:
  age:
    min_age: 17     # Min age to be a parent
    child: 21       # Age at which a child should no longer have a parent
  login:
    mandatory: true # Must have a login

#############################################
# Member checks
#############################################
members:
  confirmation:
    expiry: 365         # Warn if confirmation is older than this many days
    align_quarter: true # Align expiry to the calendar quarter
  dbs:
    expiry: 60          # Days warning prior to expiry
  newstarter:
    grace: 90           # Grace period before errors are reported
  inactive:
    time: 365           # Warn if inactive for this many days

#############################################
# Coach checks
#############################################
coaches:
  role:
    mandatory: false # All coaches must be in a coach role

#############################################
# Role checks
#############################################
roles:
  volunteer:
    mandatory: true # Members of a role must have the volunteer flag
  login:
    unused: 180     # Error if login not used in this many days

# Example per-role config:
#  role:
#    "Coaches":
#      check_permissions: false
#      is_coach: true
#    "Register Taker":
#      check_restrictions: true

#############################################
# Group checks
#############################################
# groups:
#   priority:
#     - 'Water Polo'
#     - 'Masters'
#   group:
#     'Senior Development':
#       sessions:
#         - 'Senior Development'
#       type: swimmer

#############################################
# Session checks
#
# Sessions not listed will not be checked.
#############################################
sessions:
  absence: 120  # Number of days allowed to miss a session
  register: 60  # Alert if register not taken for this many days
#  session:
#    'Junior Squad':
#      groups:
#        - 'Junior Squad'
#    'Starts and Turns':
#      ignore_attendance: true

#############################################
# Codes of conduct
#############################################
# conduct:
#   "Code of Conduct for Coaches":
#     types:
#       - "coach"

#############################################
# Generated lists
#############################################
lists:
  suffix: " (Generated)" # Used to identify generated lists
  edit: false            # Allow the tool to modify generated lists
  confirmation: false    # Generate lists of unconfirmed members
#  list:
#    "Swimmers: 17 and under on Dec 31":
#      type: "swimmer"
#      max_age_eoy: 17

#############################################
# Member types
#############################################
types:
  synchro:
    name: "Synchro"
    check_se_number: false
    parents: false
  waterpolo:
    name: "Water Polo"
  volunteer:
    ignore_coach: true
    ignore_committee: true
  committee:
    jobtitle: true

jobtitle:
  ignore:
    - "Vice President"

#############################################
# Issue handling
#
# Override the default message for an error,
# or set ignore_error to suppress it.
#############################################
# issues:
#   E_CONFIRMATION_EXPIRED:
#     ignore_error: true
`
