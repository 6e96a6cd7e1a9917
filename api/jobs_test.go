package api_test

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/Skryldev/jobly/models"
)

type jobsBody struct {
	Jobs []models.Job `json:"jobs"`
}

type jobBody struct {
	Job models.Job `json:"job"`
}

func jobTitles(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Title
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// POST /jobs
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateJob(t *testing.T) {
	ts := newTestServer(t)
	newJob := map[string]any{
		"title":         "software developer",
		"salary":        82000,
		"equity":        "0.8",
		"companyHandle": "c1",
	}

	t.Run("admin", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/jobs", newJob, ts.adminToken)
		expectStatus(t, rec, http.StatusCreated)
		var got jobBody
		decode(t, rec, &got)
		want := models.Job{ID: got.Job.ID, Title: "software developer", Salary: ptr(int64(82000)), Equity: ptr("0.8"), CompanyHandle: "c1"}
		if got.Job.ID == 0 || !reflect.DeepEqual(got.Job, want) {
			t.Fatalf("job = %+v", got.Job)
		}
	})

	t.Run("non-admin", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPost, "/jobs", newJob, ts.userToken), http.StatusUnauthorized)
	})

	t.Run("anon", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPost, "/jobs", newJob, ""), http.StatusUnauthorized)
	})

	t.Run("missing data", func(t *testing.T) {
		body := map[string]any{"title": "carpenter apprentice", "location": "Ohio"}
		expectError(t, ts.do(t, http.MethodPost, "/jobs", body, ts.adminToken), http.StatusBadRequest)
	})

	t.Run("invalid data", func(t *testing.T) {
		body := map[string]any{"title": "x", "salary": "50000", "equity": "0.8", "companyHandle": "c1"}
		expectError(t, ts.do(t, http.MethodPost, "/jobs", body, ts.adminToken), http.StatusBadRequest)
	})

	t.Run("unknown company", func(t *testing.T) {
		body := map[string]any{"title": "x", "companyHandle": "nope"}
		expectError(t, ts.do(t, http.MethodPost, "/jobs", body, ts.adminToken), http.StatusBadRequest)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// GET /jobs
// ─────────────────────────────────────────────────────────────────────────────

func TestListJobs(t *testing.T) {
	ts := newTestServer(t)
	all := []string{"ai developer", "data analyst", "data engineer", "environmental consultant", "tax accountant"}

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filters", "", all},
		{"title", "?title=data", []string{"data analyst", "data engineer"}},
		{"min salary", "?minSalary=95000", []string{"ai developer", "data engineer"}},
		{"has equity true", "?hasEquity=true", []string{"data analyst", "data engineer", "tax accountant"}},
		{"has equity false", "?hasEquity=false", all},
		{"all filters", "?title=data&minSalary=150000&hasEquity=true", []string{"data engineer"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/jobs"+tc.query, nil, "")
			expectStatus(t, rec, http.StatusOK)
			var got jobsBody
			decode(t, rec, &got)
			if titles := jobTitles(got.Jobs); !reflect.DeepEqual(titles, tc.want) {
				t.Fatalf("titles = %v, want %v", titles, tc.want)
			}
		})
	}
}

func TestListJobs_Shape(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/jobs", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var got jobsBody
	decode(t, rec, &got)

	first := got.Jobs[0]
	if *first.Salary != 97000 || *first.Equity != "0" || first.CompanyHandle != "c3" {
		t.Fatalf("unexpected first job: %+v", first)
	}
	consultant := got.Jobs[3]
	if consultant.Equity != nil {
		t.Fatalf("expected null equity: %+v", consultant)
	}
}

func TestListJobs_EmptyResultIsArray(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/jobs?title=astronaut", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); body != `{"jobs":[]}` {
		t.Fatalf("body = %s", body)
	}
}

func TestListJobs_InvalidQuery(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []string{"?subscribers=45", "?minSalary=abc", "?minSalary=-1", "?hasEquity=yes"} {
		t.Run(q, func(t *testing.T) {
			expectError(t, ts.do(t, http.MethodGet, "/jobs"+q, nil, ""), http.StatusBadRequest)
		})
	}
}

func TestListJobs_DatabaseFailure(t *testing.T) {
	ts := newTestServer(t)
	if _, err := ts.fx.DB.Exec(context.Background(), "DROP TABLE applications"); err != nil {
		t.Fatalf("drop applications: %v", err)
	}
	if _, err := ts.fx.DB.Exec(context.Background(), "DROP TABLE jobs"); err != nil {
		t.Fatalf("drop jobs: %v", err)
	}

	rec := ts.do(t, http.MethodGet, "/jobs", nil, ts.adminToken)
	env := expectError(t, rec, http.StatusInternalServerError)
	if env.Error.Message != "Internal Server Error" {
		t.Fatalf("internal detail leaked: %q", env.Error.Message)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GET /jobs/:id
// ─────────────────────────────────────────────────────────────────────────────

func TestGetJob(t *testing.T) {
	ts := newTestServer(t)
	id := ts.fx.JobIDs[0]

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/jobs/%d", id), nil, "")
	expectStatus(t, rec, http.StatusOK)
	var got jobBody
	decode(t, rec, &got)
	want := models.Job{ID: id, Title: "ai developer", Salary: ptr(int64(97000)), Equity: ptr("0"), CompanyHandle: "c3"}
	if !reflect.DeepEqual(got.Job, want) {
		t.Fatalf("job = %+v", got.Job)
	}

	expectError(t, ts.do(t, http.MethodGet, "/jobs/0", nil, ""), http.StatusNotFound)
	expectError(t, ts.do(t, http.MethodGet, "/jobs/abc", nil, ""), http.StatusNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// PATCH /jobs/:id
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdateJob(t *testing.T) {
	ts := newTestServer(t)
	path := fmt.Sprintf("/jobs/%d", ts.fx.JobIDs[0])

	t.Run("admin", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, path, map[string]any{"title": "conservation biologist"}, ts.adminToken)
		expectStatus(t, rec, http.StatusOK)
		var got jobBody
		decode(t, rec, &got)
		want := models.Job{ID: ts.fx.JobIDs[0], Title: "conservation biologist", Salary: ptr(int64(97000)), Equity: ptr("0"), CompanyHandle: "c3"}
		if !reflect.DeepEqual(got.Job, want) {
			t.Fatalf("job = %+v", got.Job)
		}
	})

	t.Run("anon", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, map[string]any{"title": "sportscaster"}, ""), http.StatusUnauthorized)
	})

	t.Run("non-admin", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, map[string]any{"title": "sportscaster"}, ts.userToken), http.StatusUnauthorized)
	})

	t.Run("no such id", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, "/jobs/0", map[string]any{"title": "environmental analyst"}, ts.adminToken), http.StatusNotFound)
	})

	t.Run("id change", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, map[string]any{"id": 847}, ts.adminToken), http.StatusBadRequest)
	})

	t.Run("company change", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, map[string]any{"companyHandle": 53433}, ts.adminToken), http.StatusBadRequest)
	})

	t.Run("empty body", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, map[string]any{}, ts.adminToken), http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		expectError(t, ts.do(t, http.MethodPatch, path, `{"title":`, ts.adminToken), http.StatusBadRequest)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// DELETE /jobs/:id
// ─────────────────────────────────────────────────────────────────────────────

func TestRemoveJob(t *testing.T) {
	ts := newTestServer(t)
	id := ts.fx.JobIDs[0]
	path := fmt.Sprintf("/jobs/%d", id)

	expectError(t, ts.do(t, http.MethodDelete, path, nil, ""), http.StatusUnauthorized)
	expectError(t, ts.do(t, http.MethodDelete, path, nil, ts.userToken), http.StatusUnauthorized)
	// Gate runs before the id is parsed.
	expectError(t, ts.do(t, http.MethodDelete, "/jobs/1,2,3", nil, ""), http.StatusUnauthorized)

	rec := ts.do(t, http.MethodDelete, path, nil, ts.adminToken)
	expectStatus(t, rec, http.StatusOK)
	var got struct {
		Deleted int64 `json:"deleted"`
	}
	decode(t, rec, &got)
	if got.Deleted != id {
		t.Fatalf("deleted = %d, want %d", got.Deleted, id)
	}

	expectError(t, ts.do(t, http.MethodGet, path, nil, ""), http.StatusNotFound)
	expectError(t, ts.do(t, http.MethodDelete, "/jobs/0", nil, ts.adminToken), http.StatusNotFound)
}

func TestCreateThenGetJob(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/jobs", map[string]any{"title": "welder", "salary": 1, "companyHandle": "c2"}, ts.adminToken)
	expectStatus(t, rec, http.StatusCreated)
	var created jobBody
	decode(t, rec, &created)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/jobs/%d", created.Job.ID), nil, "")
	expectStatus(t, rec, http.StatusOK)
	var fetched jobBody
	decode(t, rec, &fetched)
	if !reflect.DeepEqual(created.Job, fetched.Job) {
		t.Fatalf("fetched %+v, created %+v", fetched.Job, created.Job)
	}
}
