package main

import (
	"context"
	"fmt"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
)

// createSuperAdmin seeds an admin-table row with the superadmin role and no
// school scope. Profile columns irrelevant to a cross-school operator are
// filled with placeholders.
func (cli *commandLine) createSuperAdmin(username, email, password string) error {
	ctx := context.Background()

	username = core.CleanString(username, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	rows, err := cli.store.FetchWhere(ctx, record.TableAdmin, record.NewFieldSet().SetString("username", username))
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return fmt.Errorf("admin %q already exists", username)
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return err
	}

	fs := record.NewFieldSet().
		SetString("username", username).
		SetString("email", email).
		Set("password", hash).
		SetString("fullName", username).
		SetString("phoneNumber", "-").
		SetString("schoolName", "-").
		SetString("schoolAddress", "-").
		SetString("schoolContactNumber", "-").
		SetString("schoolEmail", email).
		SetString("schoolRegisterId", "-").
		SetString("governmentId", "-").
		Set("agreementToTerms", true).
		SetString("role", user.RoleSuperAdmin)

	usr, err := cli.store.Insert(ctx, record.TableAdmin, fs)
	if err != nil {
		return err
	}
	logger.Printf("superadmin %q created (id=%d)", username, usr.Int("id"))
	return nil
}
