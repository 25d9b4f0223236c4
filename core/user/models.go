package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleParent     = "parent"
	RoleStudent    = "student"
	RoleSuperAdmin = "superadmin"
)

// fixed work factor; matches the digests already in the wild
const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored digest.
// Mismatch is an invalid-credential failure, never a process abort.
func CheckPassword(hash, pwd string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)); err != nil {
		return core.NewUnauthorizedError("invalid credentials")
	}
	return nil
}

// RoleOf derives the acting role from a resolved account row: the role
// column when the table carries one (admin vs superadmin), else the table
// name itself.
func RoleOf(usr record.Row, table record.Table) string {
	if r := usr.String("role"); r != "" {
		return r
	}
	return table.String()
}

// AdminSignup contains information needed to register an admin and its school.
type AdminSignup struct {
	Username            string `json:"username" form:"username" validate:"required,min=3,alphanum_"`
	Password            string `json:"password" form:"password" validate:"required,min=8"`
	Email               string `json:"email" form:"email" validate:"required,email"`
	FullName            string `json:"fullName" form:"fullName" validate:"required"`
	PhoneNumber         string `json:"phoneNumber" form:"phoneNumber" validate:"required"`
	SchoolName          string `json:"schoolName" form:"schoolName" validate:"required"`
	SchoolAddress       string `json:"schoolAddress" form:"schoolAddress" validate:"required"`
	SchoolContactNumber string `json:"schoolContactNumber" form:"schoolContactNumber" validate:"required"`
	SchoolEmail         string `json:"schoolEmail" form:"schoolEmail" validate:"required,email"`
	SchoolRegisterID    string `json:"schoolRegisterId" form:"schoolRegisterId" validate:"required"`
	GovernmentID        string `json:"governmentId" form:"governmentId" validate:"required"`
	AgreementToTerms    bool   `json:"agreementToTerms" form:"agreementToTerms" validate:"required"`
	SchoolEstablished   string `json:"schoolEstablished" form:"schoolEstablished" validate:"omitempty,datestr"`

	// normalized relative upload paths, set by the boundary layer
	ProfilePicture string `json:"-" form:"-"`
	SchoolLogo     string `json:"-" form:"-"`
}

func (d *AdminSignup) Validate(validate *validator.Validate) error {
	d.Username = core.CleanString(d.Username, true /* lower */)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.SchoolEmail = core.CleanString(d.SchoolEmail, true /* lower */)
	return validate.Struct(d)
}

func (d AdminSignup) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("username", d.Username).
		SetString("email", d.Email).
		SetString("fullName", d.FullName).
		SetString("phoneNumber", d.PhoneNumber).
		SetString("schoolName", d.SchoolName).
		SetString("schoolAddress", d.SchoolAddress).
		SetString("schoolContactNumber", d.SchoolContactNumber).
		SetString("schoolEmail", d.SchoolEmail).
		SetString("schoolRegisterId", d.SchoolRegisterID).
		SetString("governmentId", d.GovernmentID).
		Set("agreementToTerms", d.AgreementToTerms).
		SetString("schoolEstablished", d.SchoolEstablished).
		SetString("profilePicture", d.ProfilePicture).
		SetString("schoolLogo", d.SchoolLogo)
}

// NewTeacher contains information needed to create a teacher account.
type NewTeacher struct {
	Username  string `json:"username" form:"username" validate:"required,min=3,alphanum_"`
	Password  string `json:"password" form:"password" validate:"required,min=8"`
	Name      string `json:"name" form:"name" validate:"required"`
	Surname   string `json:"surname" form:"surname" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Phone     string `json:"phone" form:"phone" validate:"required"`
	Address   string `json:"address" form:"address" validate:"required"`
	BloodType string `json:"bloodType" form:"bloodType" validate:"required"`
	Sex       string `json:"sex" form:"sex" validate:"required"`
	Birthday  string `json:"birthday" form:"birthday" validate:"required,datestr"`

	Profile string `json:"-" form:"-"`
}

func (d *NewTeacher) Validate(validate *validator.Validate) error {
	d.Username = core.CleanString(d.Username, true /* lower */)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Sex = core.CleanString(d.Sex, true /* lower */)
	return validate.Struct(d)
}

func (d NewTeacher) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("username", d.Username).
		SetString("email", d.Email).
		SetString("name", d.Name).
		SetString("surname", d.Surname).
		SetString("phone", d.Phone).
		SetString("address", d.Address).
		SetString("bloodType", d.BloodType).
		SetString("sex", d.Sex).
		SetString("birthday", d.Birthday).
		SetString("profile", d.Profile)
}

// NewParent contains information needed to create a parent account.
type NewParent struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

func (d *NewParent) Validate(validate *validator.Validate) error {
	d.Username = core.CleanString(d.Username, true /* lower */)
	d.Email = core.CleanString(d.Email, true /* lower */)
	return validate.Struct(d)
}

func (d NewParent) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("username", d.Username).
		SetString("email", d.Email).
		SetString("name", d.Name).
		SetString("surname", d.Surname).
		SetString("phone", d.Phone).
		SetString("address", d.Address)
}

// NewStudent contains information needed to create a student account.
// Parent may be referenced by username or id; class and grade are optional
// and must resolve within the admin's school.
type NewStudent struct {
	Username       string `json:"username" form:"username" validate:"required,min=3,alphanum_"`
	Password       string `json:"password" form:"password" validate:"required,min=8"`
	Name           string `json:"name" form:"name" validate:"required"`
	Surname        string `json:"surname" form:"surname" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Phone          string `json:"phone" form:"phone" validate:"required"`
	Address        string `json:"address" form:"address" validate:"required"`
	BloodType      string `json:"bloodType" form:"bloodType" validate:"required"`
	Sex            string `json:"sex" form:"sex" validate:"required"`
	Birthday       string `json:"birthday" form:"birthday" validate:"required,datestr"`
	ParentUsername string `json:"parentUsername" form:"parentUsername"`
	ParentID       int    `json:"parentId" form:"parentId"`
	ClassID        int    `json:"classId" form:"classId"`
	GradeID        int    `json:"gradeId" form:"gradeId"`

	Profile string `json:"-" form:"-"`
}

func (d *NewStudent) Validate(validate *validator.Validate) error {
	d.Username = core.CleanString(d.Username, true /* lower */)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Sex = core.CleanString(d.Sex, true /* lower */)
	d.ParentUsername = core.CleanString(d.ParentUsername, true /* lower */)
	return validate.Struct(d)
}

func (d NewStudent) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("username", d.Username).
		SetString("email", d.Email).
		SetString("name", d.Name).
		SetString("surname", d.Surname).
		SetString("phone", d.Phone).
		SetString("address", d.Address).
		SetString("bloodType", d.BloodType).
		SetString("sex", d.Sex).
		SetString("birthday", d.Birthday).
		SetString("profile", d.Profile)
}

// UpdateAccount defines what information may be provided to modify an
// existing account of any role; only supplied, non-blank fields are
// applied. A new password additionally requires the current one.
type UpdateAccount struct {
	Username    string `json:"username" form:"username" validate:"omitempty,min=3,alphanum_"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	Password    string `json:"password" form:"password" validate:"omitempty,min=8"`

	// teacher/parent/student profile
	Name      string `json:"name" form:"name"`
	Surname   string `json:"surname" form:"surname"`
	Phone     string `json:"phone" form:"phone"`
	Address   string `json:"address" form:"address"`
	BloodType string `json:"bloodType" form:"bloodType"`
	Sex       string `json:"sex" form:"sex"`
	Birthday  string `json:"birthday" form:"birthday" validate:"omitempty,datestr"`
	Profile   string `json:"-" form:"-"`

	// student placement
	ParentID int `json:"parentId" form:"parentId"`
	ClassID  int `json:"classId" form:"classId"`
	GradeID  int `json:"gradeId" form:"gradeId"`

	// admin / school profile
	FullName            string `json:"fullName" form:"fullName"`
	PhoneNumber         string `json:"phoneNumber" form:"phoneNumber"`
	SchoolName          string `json:"schoolName" form:"schoolName"`
	SchoolAddress       string `json:"schoolAddress" form:"schoolAddress"`
	SchoolContactNumber string `json:"schoolContactNumber" form:"schoolContactNumber"`
	SchoolEmail         string `json:"schoolEmail" form:"schoolEmail" validate:"omitempty,email"`
	SchoolRegisterID    string `json:"schoolRegisterId" form:"schoolRegisterId"`
	GovernmentID        string `json:"governmentId" form:"governmentId"`
	SchoolEstablished   string `json:"schoolEstablished" form:"schoolEstablished" validate:"omitempty,datestr"`
	ProfilePicture      string `json:"-" form:"-"`
	SchoolLogo          string `json:"-" form:"-"`
}

func (d *UpdateAccount) Validate(validate *validator.Validate) error {
	d.Username = core.CleanString(d.Username, true /* lower */)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Sex = core.CleanString(d.Sex, true /* lower */)
	d.SchoolEmail = core.CleanString(d.SchoolEmail, true /* lower */)
	return validate.Struct(d)
}

// FieldSet builds the sparse update set for the given role table; columns
// outside the table's shape are never included. The password is handled
// separately by the service so the old-password gate cannot be skipped.
func (d UpdateAccount) FieldSet(table record.Table) *record.FieldSet {
	fs := record.NewFieldSet().
		SetString("username", d.Username).
		SetString("email", d.Email)

	switch table {
	case record.TableAdmin:
		fs.SetString("fullName", d.FullName).
			SetString("phoneNumber", d.PhoneNumber).
			SetString("schoolName", d.SchoolName).
			SetString("schoolAddress", d.SchoolAddress).
			SetString("schoolContactNumber", d.SchoolContactNumber).
			SetString("schoolEmail", d.SchoolEmail).
			SetString("schoolRegisterId", d.SchoolRegisterID).
			SetString("governmentId", d.GovernmentID).
			SetString("schoolEstablished", d.SchoolEstablished).
			SetString("profilePicture", d.ProfilePicture).
			SetString("schoolLogo", d.SchoolLogo)
	case record.TableTeacher:
		fs.SetString("name", d.Name).
			SetString("surname", d.Surname).
			SetString("phone", d.Phone).
			SetString("address", d.Address).
			SetString("bloodType", d.BloodType).
			SetString("sex", d.Sex).
			SetString("birthday", d.Birthday).
			SetString("profile", d.Profile)
	case record.TableParent:
		fs.SetString("name", d.Name).
			SetString("surname", d.Surname).
			SetString("phone", d.Phone).
			SetString("address", d.Address)
	case record.TableStudent:
		fs.SetString("name", d.Name).
			SetString("surname", d.Surname).
			SetString("phone", d.Phone).
			SetString("address", d.Address).
			SetString("bloodType", d.BloodType).
			SetString("sex", d.Sex).
			SetString("birthday", d.Birthday).
			SetString("profile", d.Profile).
			SetInt("parentId", d.ParentID).
			SetInt("classId", d.ClassID).
			SetInt("gradeId", d.GradeID)
	}
	return fs
}
