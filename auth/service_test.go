package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/authz"
	"github.com/jrsteele09/go-admin-console/catalog"
	fakecatalogrepo "github.com/jrsteele09/go-admin-console/catalog/repofake"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/phase"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
	fakeuserrepo "github.com/jrsteele09/go-admin-console/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	cookieName       = "ADMIN_AUTH_TOKEN"
	testUserCd       = "system"
	testUserPassword = "s3cret-pass"

	menuMain      int64 = 1
	menuNotice    int64 = 10
	menuUserMgmt  int64 = 11
	menuSysFolder int64 = 20
)

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	issued   int
}

func (c *countingRecorder) Outcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func (c *countingRecorder) TokenIssued() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
}

type testFixture struct {
	codec    *token.Codec
	catalog  *fakecatalogrepo.FakeCatalogRepo
	users    *fakeuserrepo.FakeUserRepo
	recorder *countingRecorder
	service  *auth.Service
}

func setupTestFixture(t *testing.T, p phase.Phase) *testFixture {
	t.Helper()
	ctx := context.Background()

	signer, err := token.NewHMACSigner([]byte("axboot"))
	require.NoError(t, err)
	codec, err := token.NewCodec(signer, p)
	require.NoError(t, err)

	cat := fakecatalogrepo.NewFakeCatalogRepo()
	require.NoError(t, cat.UpsertProgram(ctx, &catalog.Program{ProgCd: "main", ProgNm: "Home", AuthCheck: "N", Remark: "Console home"}))
	require.NoError(t, cat.UpsertProgram(ctx, &catalog.Program{ProgCd: "notice", ProgNm: "Notices", AuthCheck: "N", Remark: "Notice board"}))
	require.NoError(t, cat.UpsertProgram(ctx, &catalog.Program{ProgCd: "user-mgmt", ProgNm: "Users", AuthCheck: catalog.AuthCheckEnabled, Remark: "Manage console users"}))
	require.NoError(t, cat.UpsertMenu(ctx, &catalog.Menu{MenuID: menuMain, MenuGrpCd: "SYS", MenuNm: "Home", Sort: 0, ProgCd: "main"}))
	require.NoError(t, cat.UpsertMenu(ctx, &catalog.Menu{MenuID: menuSysFolder, MenuGrpCd: "SYS", MenuNm: "System", Sort: 1}))
	require.NoError(t, cat.UpsertMenu(ctx, &catalog.Menu{MenuID: menuNotice, MenuGrpCd: "SYS", MenuNm: "Notice", ParentID: utils.Ptr(menuSysFolder), Sort: 1, ProgCd: "notice"}))
	require.NoError(t, cat.UpsertMenu(ctx, &catalog.Menu{MenuID: menuUserMgmt, MenuGrpCd: "SYS", MenuNm: "User", ParentID: utils.Ptr(menuSysFolder), Sort: 2, ProgCd: "user-mgmt"}))

	engine, err := authz.NewEngine(cat, cat)
	require.NoError(t, err)

	ur := fakeuserrepo.NewFakeUserRepo()
	hash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)
	require.NoError(t, ur.Upsert(ctx, &users.User{
		UserCd:       testUserCd,
		UserNm:       "System Admin",
		PasswordHash: hash,
		DateFormat:   "yyyy-mm-dd",
		MenuGrpCd:    "SYS",
		AuthGroups:   []string{"S0001"},
		UseYn:        users.UsedYes,
	}))
	require.NoError(t, ur.Upsert(ctx, &users.User{
		UserCd:       "blocked",
		PasswordHash: hash,
		MenuGrpCd:    "SYS",
		UseYn:        users.UsedNo,
	}))

	recorder := &countingRecorder{outcomes: make(map[string]int)}
	service, err := auth.NewService(auth.Deps{
		Codec:      codec,
		Resolver:   session.NewResolver(codec, session.Cookie{Name: cookieName}),
		Authorizer: engine,
		Users:      ur,
	}, auth.WithRecorder(recorder))
	require.NoError(t, err)

	return &testFixture{
		codec:    codec,
		catalog:  cat,
		users:    ur,
		recorder: recorder,
		service:  service,
	}
}

func testUser(groups ...string) users.SessionUser {
	return users.SessionUser{
		UserCd:        testUserCd,
		UserNm:        "System Admin",
		DateFormat:    "yyyy-mm-dd",
		MenuGrpCd:     "SYS",
		AuthGroupList: groups,
	}
}

func (f *testFixture) request(t *testing.T, target string, user *users.SessionUser) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != nil {
		raw, err := f.codec.Issue(*user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: raw})
	}
	return req
}

func sessionCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			out = append(out, c)
		}
	}
	return out
}

func TestNewService_RequiresDeps(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	resolver := session.NewResolver(f.codec, session.Cookie{Name: cookieName})
	engine, err := authz.NewEngine(f.catalog, f.catalog)
	require.NoError(t, err)

	full := auth.Deps{Codec: f.codec, Resolver: resolver, Authorizer: engine, Users: f.users}
	missing := map[string]func(d *auth.Deps){
		"codec":      func(d *auth.Deps) { d.Codec = nil },
		"resolver":   func(d *auth.Deps) { d.Resolver = nil },
		"authorizer": func(d *auth.Deps) { d.Authorizer = nil },
		"users":      func(d *auth.Deps) { d.Users = nil },
	}
	for name, strip := range missing {
		t.Run(name, func(t *testing.T) {
			deps := full
			strip(&deps)
			_, err := auth.NewService(deps)
			require.Error(t, err)
		})
	}
}

func TestAuthenticate_Anonymous(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie"},
		{name: "garbage cookie", cookie: &http.Cookie{Name: cookieName, Value: "not-a-token"}},
		{name: "foreign signature", cookie: &http.Cookie{Name: cookieName, Value: foreignToken(t)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, phase.Local)
			req := httptest.NewRequest(http.MethodGet, "/pages/main?menuId=1", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			res, err := f.service.Authenticate(rec, req)
			require.NoError(t, err)
			require.False(t, res.Authentication.IsAuthenticated())

			cookies := sessionCookies(rec)
			require.Len(t, cookies, 1)
			require.Equal(t, -1, cookies[0].MaxAge, "cookie is deleted")

			var script session.ScriptSession
			require.NoError(t, json.Unmarshal([]byte(res.Attributes.String(session.AttrScriptSession)), &script))
			require.Equal(t, session.NoLoginSession(), script)
			_, hasMenu := res.Attributes.Get(session.AttrMenuJSON)
			require.False(t, hasMenu)

			require.Equal(t, 1, f.recorder.outcomes[metrics.OutcomeAnonymous])
			require.Zero(t, f.recorder.issued)
		})
	}
}

func foreignToken(t *testing.T) string {
	t.Helper()
	signer, err := token.NewHMACSigner([]byte("some-other-secret"))
	require.NoError(t, err)
	codec, err := token.NewCodec(signer, phase.Local)
	require.NoError(t, err)
	raw, err := codec.Issue(testUser("S0001"))
	require.NoError(t, err)
	return raw
}

func TestAuthenticate_APIPathSkipsAuthorization(t *testing.T) {
	f := setupTestFixture(t, phase.Production)
	user := testUser() // no grant for the checked user-mgmt menu
	req := f.request(t, fmt.Sprintf("/api/v1/users?menuId=%d", menuUserMgmt), &user)
	rec := httptest.NewRecorder()

	res, err := f.service.Authenticate(rec, req)
	require.NoError(t, err)
	require.True(t, res.Authentication.IsAuthenticated())
	require.Empty(t, res.Attributes, "API requests get no page attributes")

	cookies := sessionCookies(rec)
	require.Len(t, cookies, 1)
	require.Equal(t, 3000, cookies[0].MaxAge)
}

func TestAuthenticate_PageAuthorization(t *testing.T) {
	t.Run("checked program without grant is denied", func(t *testing.T) {
		f := setupTestFixture(t, phase.Local)
		user := testUser("S0009")
		rec := httptest.NewRecorder()

		res, err := f.service.Authenticate(rec, f.request(t, fmt.Sprintf("/pages/system/user-mgmt.html?menuId=%d", menuUserMgmt), &user))
		require.ErrorIs(t, err, apperrors.ErrAccessDenied)
		require.False(t, res.Authentication.IsAuthenticated())
		require.Empty(t, sessionCookies(rec), "a denied request gets no fresh cookie")
		require.Equal(t, 1, f.recorder.outcomes[metrics.OutcomeDenied])
	})

	t.Run("checked program with grant exposes the grant", func(t *testing.T) {
		f := setupTestFixture(t, phase.Local)
		grant := &catalog.AuthGroupMenu{GrpAuthCd: "S0001", MenuID: menuUserMgmt, SchAh: "Y", SavAh: "Y"}
		require.NoError(t, f.catalog.UpsertGrant(context.Background(), grant))
		user := testUser("S0001")
		rec := httptest.NewRecorder()

		res, err := f.service.Authenticate(rec, f.request(t, fmt.Sprintf("/pages/system/user-mgmt.html?menuId=%d", menuUserMgmt), &user))
		require.NoError(t, err)
		require.True(t, res.Authentication.IsAuthenticated())
		require.Equal(t, testUserCd, res.Authentication.Name())

		got, ok := res.Attributes.Get(session.AttrAuthGroupMenu)
		require.True(t, ok)
		require.Equal(t, grant, got)
		require.Equal(t, "User", res.Attributes.String(session.AttrPageName))
		require.Equal(t, "Manage console users", res.Attributes.String(session.AttrPageRemark))

		program, ok := res.Attributes.Get(session.AttrProgram)
		require.True(t, ok)
		require.Equal(t, "user-mgmt", program.(*catalog.Program).ProgCd)

		var script session.ScriptSession
		require.NoError(t, json.Unmarshal([]byte(res.Attributes.String(session.AttrScriptSession)), &script))
		require.Equal(t, "YYYY-MM-DD", script.DateFormat)
		require.True(t, script.Login)

		var loginUser users.SessionUser
		require.NoError(t, json.Unmarshal([]byte(res.Attributes.String(session.AttrLoginUser)), &loginUser))
		require.True(t, user.Equal(loginUser))
		require.Equal(t, "yyyy-mm-dd", loginUser.DateFormat, "login user keeps the stored format")
	})

	t.Run("unchecked program ignores grants", func(t *testing.T) {
		f := setupTestFixture(t, phase.Local)
		user := testUser()
		rec := httptest.NewRecorder()

		res, err := f.service.Authenticate(rec, f.request(t, fmt.Sprintf("/pages/notice?menuId=%d", menuNotice), &user))
		require.NoError(t, err)
		require.True(t, res.Authentication.IsAuthenticated())
		_, hasGrant := res.Attributes.Get(session.AttrAuthGroupMenu)
		require.False(t, hasGrant)
		require.Equal(t, "Notice board", res.Attributes.String(session.AttrPageRemark))
	})

	t.Run("malformed menuId means no menu", func(t *testing.T) {
		f := setupTestFixture(t, phase.Local)
		user := testUser()
		rec := httptest.NewRecorder()

		res, err := f.service.Authenticate(rec, f.request(t, "/pages/user-mgmt?menuId=eleven", &user))
		require.NoError(t, err)
		require.True(t, res.Authentication.IsAuthenticated())
		require.Empty(t, res.Attributes.String(session.AttrPageName))
		require.NotEmpty(t, res.Attributes.String(session.AttrScriptSession))
	})
}

func TestAuthenticate_MainPageBuildsMenuTree(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	user := testUser("S0001")

	rec := httptest.NewRecorder()
	res, err := f.service.Authenticate(rec, f.request(t, "/pages/main.html?menuId=1", &user))
	require.NoError(t, err)

	raw := res.Attributes.String(session.AttrMenuJSON)
	require.NotEmpty(t, raw)
	var tree []*catalog.Menu
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	require.Len(t, tree, 2)
	require.Equal(t, menuMain, tree[0].MenuID)
	require.Equal(t, menuSysFolder, tree[1].MenuID)
	require.Len(t, tree[1].Children, 1, "user-mgmt hidden without a grant")

	rec = httptest.NewRecorder()
	res, err = f.service.Authenticate(rec, f.request(t, "/pages/notice.html?menuId=10", &user))
	require.NoError(t, err)
	_, ok := res.Attributes.Get(session.AttrMenuJSON)
	require.False(t, ok)
}

func TestAuthenticate_SlidingExpiration(t *testing.T) {
	for _, p := range []phase.Phase{phase.Local, phase.Alpha, phase.Production} {
		t.Run(p.String(), func(t *testing.T) {
			f := setupTestFixture(t, p)
			user := testUser("S0001")
			req := f.request(t, "/api/v1/session", &user)
			original, err := req.Cookie(cookieName)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			_, err = f.service.Authenticate(rec, req)
			require.NoError(t, err)

			cookies := sessionCookies(rec)
			require.Len(t, cookies, 1)
			require.Equal(t, token.Expiry(p), cookies[0].MaxAge)
			require.Equal(t, f.service.TokenExpiry(), cookies[0].MaxAge)
			require.NotEqual(t, original.Value, cookies[0].Value)
			require.True(t, cookies[0].HttpOnly)

			refreshed, ok := f.codec.Parse(cookies[0].Value)
			require.True(t, ok)
			require.True(t, user.Equal(refreshed))
			require.Equal(t, 1, f.recorder.issued)
		})
	}
}

type brokenAuthorizer struct{ err error }

func (b brokenAuthorizer) Authorize(context.Context, users.SessionUser, *int64) (authz.Result, error) {
	return authz.Result{}, b.err
}

func (b brokenAuthorizer) MenuTree(context.Context, users.SessionUser) ([]*catalog.Menu, error) {
	return nil, b.err
}

func TestAuthenticate_CollaboratorFailure(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	boom := errors.New("catalog unavailable")
	service, err := auth.NewService(auth.Deps{
		Codec:      f.codec,
		Resolver:   session.NewResolver(f.codec, session.Cookie{Name: cookieName}),
		Authorizer: brokenAuthorizer{err: boom},
		Users:      f.users,
	})
	require.NoError(t, err)

	user := testUser()
	rec := httptest.NewRecorder()
	_, err = service.Authenticate(rec, f.request(t, "/pages/notice?menuId=10", &user))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, apperrors.ErrAccessDenied)

	// API requests never reach the authorizer.
	rec = httptest.NewRecorder()
	res, err := service.Authenticate(rec, f.request(t, "/api/v1/session?menuId=10", &user))
	require.NoError(t, err)
	require.True(t, res.Authentication.IsAuthenticated())
}

func TestService_BaseAPIPath(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	require.True(t, f.service.IsAPIPath("/api"))
	require.True(t, f.service.IsAPIPath("/api/v1/session"))
	require.False(t, f.service.IsAPIPath("/apiary"))
	require.False(t, f.service.IsAPIPath("/pages/main"))

	custom, err := auth.NewService(auth.Deps{
		Codec:      f.codec,
		Resolver:   session.NewResolver(f.codec, session.Cookie{Name: cookieName}),
		Authorizer: brokenAuthorizer{},
		Users:      f.users,
	}, auth.WithBaseAPIPath("rest/"))
	require.NoError(t, err)
	require.True(t, custom.IsAPIPath("/rest/things"))
	require.False(t, custom.IsAPIPath("/api/things"))
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		f := setupTestFixture(t, phase.Alpha)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)

		req, err := f.service.Login(rec, req, testUserCd, testUserPassword)
		require.NoError(t, err)

		principal := session.FromContext(req.Context())
		require.True(t, principal.IsAuthenticated())
		user, _ := principal.User()
		require.Equal(t, []string{"S0001"}, user.AuthGroupList)

		cookies := sessionCookies(rec)
		require.Len(t, cookies, 1)
		require.Equal(t, 180, cookies[0].MaxAge)
		parsed, ok := f.codec.Parse(cookies[0].Value)
		require.True(t, ok)
		require.True(t, user.Equal(parsed))
	})

	failures := []struct {
		name     string
		userCd   string
		password string
		want     error
	}{
		{"wrong password", testUserCd, "nope", apperrors.ErrInvalidCredentials},
		{"unknown user", "ghost", testUserPassword, apperrors.ErrInvalidCredentials},
		{"blocked user", "blocked", testUserPassword, apperrors.ErrUserBlocked},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, phase.Local)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/login", nil)

			out, err := f.service.Login(rec, req, tt.userCd, tt.password)
			require.ErrorIs(t, err, tt.want)
			require.False(t, session.FromContext(out.Context()).IsAuthenticated())
			require.Empty(t, sessionCookies(rec))
		})
	}
}

func TestAddAuthentication_RejectsAnonymous(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	rec := httptest.NewRecorder()
	_, err := f.service.AddAuthentication(rec, httptest.NewRequest(http.MethodGet, "/", nil), session.Anonymous)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	require.Empty(t, sessionCookies(rec))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, phase.Local)
	user := testUser()
	rec := httptest.NewRecorder()
	f.service.Logout(rec, f.request(t, "/api/logout", &user))

	cookies := sessionCookies(rec)
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthenticate_ConcurrentRequestsAreIsolated(t *testing.T) {
	f := setupTestFixture(t, phase.Local)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := testUser("S0001")
			user.UserCd = fmt.Sprintf("user-%d", i)
			raw, err := f.codec.Issue(user)
			if err != nil {
				errs <- err
				return
			}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: raw})

			res, err := f.service.Authenticate(httptest.NewRecorder(), req)
			if err != nil {
				errs <- err
				return
			}
			req, err = f.service.AddAuthentication(httptest.NewRecorder(), req, res.Authentication)
			if err != nil {
				errs <- err
				return
			}
			if got := session.FromContext(req.Context()).Name(); got != user.UserCd {
				errs <- fmt.Errorf("request for %s saw principal %s", user.UserCd, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, workers, f.recorder.outcomes[metrics.OutcomeAuthenticated])
}

func TestPageCode(t *testing.T) {
	tests := map[string]string{
		"/pages/main":                 "main",
		"/pages/main.html":            "main",
		"/pages/system/user-mgmt.jsp": "user-mgmt",
		"/":                           "",
		"":                            "",
	}
	for in, want := range tests {
		require.Equal(t, want, auth.PageCode(in), in)
	}
}

func TestMenuID(t *testing.T) {
	require.Equal(t, utils.Ptr(int64(42)), auth.MenuID(httptest.NewRequest(http.MethodGet, "/pages/x?menuId=42", nil)))
	require.Nil(t, auth.MenuID(httptest.NewRequest(http.MethodGet, "/pages/x?menuId=abc", nil)))
	require.Nil(t, auth.MenuID(httptest.NewRequest(http.MethodGet, "/pages/x", nil)))
}
