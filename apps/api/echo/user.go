package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
)

type userApi struct {
	opts *Options
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := userApi{opts: opts}

	// un-authed endpoints
	g.POST("/signup", api.signup)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)

	// authed endpoints
	ag := g.Group("", auth)
	ag.GET("/get-current-user", api.getCurrentUser)
	ag.GET("/get-user/:id", api.getUser)
	ag.GET("/get-admins", api.queryRole(record.TableAdmin))
	ag.GET("/get-teachers", api.queryRole(record.TableTeacher))
	ag.GET("/get-parents", api.queryRole(record.TableParent))
	ag.GET("/get-students", api.queryRole(record.TableStudent))

	// admin-only endpoints
	mg := ag.Group("", adminMiddleware())
	mg.POST("/create-teacher", api.createTeacher)
	mg.POST("/create-parent", api.createParent)
	mg.POST("/create-student", api.createStudent)
	mg.PUT("/update-admin/:id", api.updateRole(record.TableAdmin))
	mg.PUT("/update-teacher/:id", api.updateRole(record.TableTeacher))
	mg.PUT("/update-parent/:id", api.updateRole(record.TableParent))
	mg.PUT("/update-student/:id", api.updateRole(record.TableStudent))
	mg.DELETE("/delete-user/:id", api.deleteUser)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.AdminSignup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminSignup")
	}

	var err error
	if data.ProfilePicture, err = saveUpload(ctx, api.opts.Conf, "profilePicture"); err != nil {
		return err
	}
	if data.SchoolLogo, err = saveUpload(ctx, api.opts.Conf, "schoolLogo"); err != nil {
		return err
	}
	if err = data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.CreateAdmin(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return api.tokenResponse(ctx, http.StatusCreated, usr, record.TableAdmin)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, tbl, err := api.opts.UserSvc.Authenticate(ctx.Request().Context(), data.Username, data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.tokenResponse(ctx, http.StatusOK, usr, tbl)
}

func (api *userApi) logout(ctx echo.Context) error {
	clearAuthCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *userApi) getCurrentUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// the caller's own row is always in scope, whatever the tenant
	usr, tbl, err := api.opts.UserSvc.GetAnyRole(ctx.Request().Context(), claims.AccountID(), claims.SchoolID)
	if err != nil {
		return errors.Wrap(err, "finding current account")
	}
	return ctx.JSON(http.StatusOK, accountPayload(usr, tbl))
}

func (api *userApi) getUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}

	usr, tbl, err := api.opts.UserSvc.GetAnyRole(ctx.Request().Context(), id, schoolID)
	if err != nil {
		return errors.Wrap(err, "finding account")
	}
	return ctx.JSON(http.StatusOK, accountPayload(usr, tbl))
}

// queryRole lists accounts of one role within the caller's school.
// A superadmin lists admins across all schools; every other listing stays
// tenant-scoped.
func (api *userApi) queryRole(table record.Table) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}

		var schoolID int
		if table == record.TableAdmin && claims.Role == user.RoleSuperAdmin {
			schoolID = 0
		} else if schoolID, err = requireSchool(claims); err != nil {
			return err
		}

		rows, err := api.opts.UserSvc.Query(ctx.Request().Context(), table, schoolID)
		if err != nil {
			return errors.Wrapf(err, "querying %ss", table)
		}
		if rows == nil {
			rows = []record.Row{}
		}
		return ctx.JSON(http.StatusOK, rows)
	}
}

func (api *userApi) createTeacher(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}

	var data user.NewTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if data.Profile, err = saveUpload(ctx, api.opts.Conf, "profile"); err != nil {
		return err
	}
	if err = data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.CreateTeacher(ctx.Request().Context(), schoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, accountPayload(usr, record.TableTeacher))
}

func (api *userApi) createParent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}

	var data user.NewParent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err = data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.CreateParent(ctx.Request().Context(), schoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, accountPayload(usr, record.TableParent))
}

func (api *userApi) createStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}

	var data user.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if data.Profile, err = saveUpload(ctx, api.opts.Conf, "profile"); err != nil {
		return err
	}
	if err = data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.CreateStudent(ctx.Request().Context(), schoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, accountPayload(usr, record.TableStudent))
}

// updateRole applies a sparse account update. When the caller updates
// their own account and an identity field (username, email) changed, a
// fresh token is issued with the new claims.
func (api *userApi) updateRole(table record.Table) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		id, err := pathID(ctx)
		if err != nil {
			return err
		}

		// a superadmin may manage admins of any school
		schoolID := claims.SchoolID
		if claims.Role == user.RoleSuperAdmin && table == record.TableAdmin {
			schoolID = 0
		} else if schoolID, err = requireSchool(claims); err != nil {
			return err
		}

		var data user.UpdateAccount
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to UpdateAccount")
		}
		for field, dst := range map[string]*string{
			"profile":        &data.Profile,
			"profilePicture": &data.ProfilePicture,
			"schoolLogo":     &data.SchoolLogo,
		} {
			if *dst, err = saveUpload(ctx, api.opts.Conf, field); err != nil {
				return err
			}
		}
		if err = data.Validate(api.opts.Validate); err != nil {
			return err
		}

		usr, err := api.opts.UserSvc.Update(ctx.Request().Context(), table, id, schoolID, data)
		if err != nil {
			return errors.Wrapf(err, "updating %s", table)
		}

		self := id == claims.AccountID() && table.String() == roleTable(claims.Role)
		identityChanged := usr.String("username") != claims.Username || usr.String("email") != claims.Email
		if self && identityChanged {
			return api.tokenResponse(ctx, http.StatusOK, usr, table)
		}
		return ctx.JSON(http.StatusOK, accountPayload(usr, table))
	}
}

func (api *userApi) deleteUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}

	// Say No to Suicide! the caller cannot delete themselves
	if id == claims.AccountID() && claims.isAdmin() {
		return errHttpForbidden
	}

	_, tbl, err := api.opts.UserSvc.GetAnyRole(ctx.Request().Context(), id, schoolID)
	if err != nil {
		return errors.Wrap(err, "finding account")
	}
	if err = api.opts.UserSvc.Delete(ctx.Request().Context(), tbl, id, schoolID); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// tokenResponse issues a token for the account, sets the auth cookie and
// returns both token and sanitized account.
func (api *userApi) tokenResponse(ctx echo.Context, status int, usr record.Row, table record.Table) error {
	claims := GetAccountClaims(api.opts.Conf, usr, table)
	token, err := GenerateToken(api.opts.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setAuthCookie(ctx, api.opts.Conf, token, time.Unix(claims.ExpiresAt, 0))
	return ctx.JSON(status, LoginResponse{Token: token, Account: accountPayload(usr, table)})
}

func accountPayload(usr record.Row, table record.Table) record.Row {
	out := usr.Sanitized()
	out["role"] = user.RoleOf(usr, table)
	return out
}

// roleTable maps a role claim back to its backing table.
func roleTable(role string) string {
	if role == user.RoleSuperAdmin {
		return record.TableAdmin.String()
	}
	return role
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, core.NewBadRequestError("invalid id: %s", ctx.Param("id"))
	}
	return id, nil
}

type (
	LoginRequest struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string     `json:"token"`
		Account record.Row `json:"account"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	if lr.Username == "" && lr.Email == "" {
		return core.NewBadRequestError("a username or email is required")
	}
	return validate.Struct(lr)
}
