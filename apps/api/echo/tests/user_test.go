package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core/record"
	testutil "github.com/trezcool/elimu/tests"
)

func TestSignupAndLogin(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodPost, "/api/v1/signup", "", signupBody("headteacher"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.NotEmpty(t, body["token"])
	account := body["account"].(map[string]interface{})
	assert.Equal(t, "headteacher", account["username"])
	assert.NotContains(t, account, "password")
	// the admin's own id anchors its school
	assert.EqualValues(t, account["id"], account["school_id"])

	cookie := responseCookie(rec, "accessToken")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// duplicate admin signup collides globally
	rec = e.do(t, http.MethodPost, "/api/v1/signup", "", signupBody("headteacher"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/login", "", map[string]interface{}{
		"username": "headteacher", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeMap(t, rec)["token"])

	rec = e.do(t, http.MethodPost, "/api/v1/login", "", map[string]interface{}{
		"username": "headteacher", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/login", "", map[string]interface{}{
		"username": "headteacher",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodPost, "/api/v1/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := responseCookie(rec, "accessToken")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthRequired(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodGet, "/api/v1/get-grades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/get-current-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUser(t *testing.T) {
	e := setup(t)

	admin := testutil.CreateAdmin(t, e.store, "current", "current@test.sc", "secret123")
	token := e.token(t, admin, record.TableAdmin)

	rec := e.do(t, http.MethodGet, "/api/v1/get-current-user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.Equal(t, "current", body["username"])
	assert.Equal(t, "admin", body["role"])
	assert.NotContains(t, body, "password")
}

func TestCreateTeacherRequiresAdmin(t *testing.T) {
	e := setup(t)

	admin := testutil.CreateAdmin(t, e.store, "boss", "boss@test.sc", "secret123")
	adminToken := e.token(t, admin, record.TableAdmin)

	payload := map[string]interface{}{
		"username":  "newteacher",
		"password":  "secret123",
		"name":      "New",
		"surname":   "Teacher",
		"email":     "newteacher@test.sc",
		"phone":     "0700000002",
		"address":   "2 Test St",
		"bloodType": "O+",
		"sex":       "female",
		"birthday":  "1990-01-15",
	}
	rec := e.do(t, http.MethodPost, "/api/v1/create-teacher", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeMap(t, rec)
	assert.EqualValues(t, admin.Int("school_id"), created["school_id"])
	assert.NotContains(t, created, "password")

	// a teacher cannot create accounts
	teacher := testutil.CreateAccount(t, e.store, record.TableTeacher, admin.Int("school_id"), "peon", "secret123")
	teacherToken := e.token(t, teacher, record.TableTeacher)

	payload["username"] = "another"
	payload["email"] = "another@test.sc"
	rec = e.do(t, http.MethodPost, "/api/v1/create-teacher", teacherToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAccountReissuesToken(t *testing.T) {
	e := setup(t)

	admin := testutil.CreateAdmin(t, e.store, "renameme", "renameme@test.sc", "secret123")
	token := e.token(t, admin, record.TableAdmin)

	path := fmt.Sprintf("/api/v1/update-admin/%d", admin.Int("id"))
	rec := e.do(t, http.MethodPut, path, token, map[string]interface{}{"username": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	// identity changed on the caller's own account: fresh token issued
	freshToken, _ := body["token"].(string)
	assert.NotEmpty(t, freshToken)
	account := body["account"].(map[string]interface{})
	assert.Equal(t, "renamed", account["username"])

	// a non-identity update returns the row alone
	rec = e.do(t, http.MethodPut, path, freshToken, map[string]interface{}{"fullName": "New Name"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decodeMap(t, rec), "token")
}

func TestDeleteUser(t *testing.T) {
	e := setup(t)

	admin := testutil.CreateAdmin(t, e.store, "deleter", "deleter@test.sc", "secret123")
	token := e.token(t, admin, record.TableAdmin)
	schoolID := admin.Int("school_id")
	testutil.CreateAccount(t, e.store, record.TableParent, schoolID, "filler", "secret123")
	parent := testutil.CreateAccount(t, e.store, record.TableParent, schoolID, "goner", "secret123")

	rec := e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/delete-user/%d", parent.Int("id")), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/delete-user/%d", parent.Int("id")), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the caller cannot delete themselves
	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/delete-user/%d", admin.Int("id")), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestQueryUsersScopedToSchool(t *testing.T) {
	e := setup(t)

	adminA := testutil.CreateAdmin(t, e.store, "lista", "lista@test.sc", "secret123")
	adminB := testutil.CreateAdmin(t, e.store, "listb", "listb@test.sc", "secret123")
	testutil.CreateAccount(t, e.store, record.TableStudent, adminA.Int("school_id"), "pupila", "secret123")
	testutil.CreateAccount(t, e.store, record.TableStudent, adminB.Int("school_id"), "pupilb", "secret123")

	rec := e.do(t, http.MethodGet, "/api/v1/get-students", e.token(t, adminA, record.TableAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	students := decodeList(t, rec)
	require.Len(t, students, 1)
	assert.Equal(t, "pupila", students[0]["username"])
	assert.NotContains(t, students[0], "password")
}
