package datamodel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

const privateOnlyMessage = "This field is only valid when you create a private dataset"

// userNameRe follows the catalog's account-name rule.
var userNameRe = regexp.MustCompile(`^[a-z0-9_\-]+$`)

var httpSchemeRe = regexp.MustCompile(`^https?://`)

// ParseAllowedUsersStr splits a comma-separated allowed-users form value
// into user names, dropping empty items.
func ParseAllowedUsersStr(s string) []string {
	users := []string{}
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}

// ValidateUserName checks a single allowed-user name against the
// catalog naming rule.
func ValidateUserName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(2, 100),
		validation.Match(userNameRe),
	)
}

// ValidateAcquireURL checks the acquisition URL format. Empty values
// are accepted; the field is optional.
func ValidateAcquireURL(url string) error {
	if url == "" {
		return nil
	}
	if err := validation.Validate(url, is.URL, validation.Match(httpSchemeRe)); err != nil {
		return errdomain.NewValidationError(constant.AcquireURLKey,
			fmt.Sprintf("The URL %q is not valid.", url))
	}
	return nil
}

// ValidateDatasetFields enforces the invariant that the allow-list
// fields are void on non-private datasets, plus the per-field format
// rules. orglessOnly additionally restricts the allow-list and
// acquisition URL to private datasets outside an organization.
func ValidateDatasetFields(d *Dataset, orglessOnly bool) error {
	fields := map[string][]string{}
	addErr := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	allowListPermitted := d.Private && (!orglessOnly || d.OwnerOrg == "")

	if len(d.AllowedUsers) > 0 && !allowListPermitted {
		addErr(constant.AllowedUsersKey, privateOnlyMessage)
	}
	if d.AcquireURL != "" && !allowListPermitted {
		addErr(constant.AcquireURLKey, privateOnlyMessage)
	}
	if d.Searchable != nil && !d.Private {
		addErr(constant.SearchableKey, privateOnlyMessage)
	}

	for _, u := range d.AllowedUsers {
		if err := ValidateUserName(u); err != nil {
			addErr(constant.AllowedUsersKey, fmt.Sprintf("user name %q is not valid", u))
		}
	}
	if err := ValidateAcquireURL(d.AcquireURL); err != nil {
		var vErr *errdomain.ValidationError
		if errors.As(err, &vErr) {
			addErr(constant.AcquireURLKey, vErr.FieldMessage(constant.AcquireURLKey))
		}
	}

	if len(fields) > 0 {
		return &errdomain.ValidationError{Fields: fields}
	}
	return nil
}
