// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

var fieldMessages = map[string]string{
	"AccountNumber.required": "Enter an account number.",
	"AccountNumber.numeric":  "Account number must contain only digits.",
	"OrgID.required":         "Enter an organization ID.",
	"OrgID.numeric":          "Organization ID must contain only digits.",
}

// Form holds the values entered during one wizard session
type Form struct {
	AccountNumber string `validate:"required,numeric"`
	OrgID         string `validate:"required,numeric"`
	Dates         daterange.Fields
	Roles         []string

	// RequesterName is shown on the details step and is not editable
	RequesterName string
}

func (f Form) clone() Form {
	out := f
	out.Roles = append([]string(nil), f.Roles...)
	return out
}

// Ok validates the details step. The returned map is keyed by field name
// (AccountNumber, OrgID, StartDate, EndDate).
func (f *Form) Ok(validate *validator.Validate, dates daterange.Validator) (map[string]string, bool) {
	errorMessages := map[string]string{}

	if errs := validate.Struct(f); errs != nil {
		verrs, ok := errs.(validator.ValidationErrors)
		if !ok {
			errorMessages["Form"] = errs.Error()
			return errorMessages, false
		}
		for _, err := range verrs {
			if _, seen := errorMessages[err.Field()]; seen {
				continue
			}
			errorMessages[err.Field()] = fieldMessage(err)
		}
	}

	report := f.Dates.Report(dates)
	if f.Dates.Start == "" {
		errorMessages["StartDate"] = "Enter a start date."
	} else if msgs := report.Errors("start"); len(msgs) > 0 {
		errorMessages["StartDate"] = msgs[0]
	}
	if f.Dates.End == "" {
		errorMessages["EndDate"] = "Enter an end date."
	} else if msgs := report.Errors("end"); len(msgs) > 0 {
		errorMessages["EndDate"] = msgs[0]
	}

	return errorMessages, len(errorMessages) == 0
}

func fieldMessage(err validator.FieldError) string {
	if msg, ok := fieldMessages[err.Field()+"."+err.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed the %q check.", err.Field(), err.Tag())
}

// Payload assembles the POST/PUT body with ISO dates
func (f Form) Payload() (models.RequestPayload, error) {
	start, ok := daterange.ToISO(f.Dates.Start)
	if !ok {
		return models.RequestPayload{}, fmt.Errorf("invalid start date %q", f.Dates.Start)
	}
	end, ok := daterange.ToISO(f.Dates.End)
	if !ok {
		return models.RequestPayload{}, fmt.Errorf("invalid end date %q", f.Dates.End)
	}
	return models.RequestPayload{
		TargetAccount: strings.TrimSpace(f.AccountNumber),
		TargetOrg:     strings.TrimSpace(f.OrgID),
		StartDate:     start,
		EndDate:       end,
		Roles:         append([]string(nil), f.Roles...),
	}, nil
}

// ValidateField checks a single details value the way Ok does, for per-keystroke prompts
func ValidateField(validate *validator.Validate, field, value string) error {
	if err := validate.Var(value, "required,numeric"); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			if msg, ok := fieldMessages[field+"."+verrs[0].Tag()]; ok {
				return errors.New(msg)
			}
		}
		return err
	}
	return nil
}
