package api

import (
	"net/http"
	"reflect"
	"testing"
)

func scheduleBody(sheetName string, title string) map[string]any {
	return map[string]any{
		"sheetName":    sheetName,
		"title":        title,
		"days":         []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		"startTime":    "09:00",
		"endTime":      "15:00",
		"interval":     50,
		"teacherCount": 2,
		"teacherNames": []string{"Tom"},
		"cells":        map[string]any{"0:0": "Math", "1:2": "Art"},
		"merges":       []map[string]int{{"row": 0, "col": 0, "rowSpan": 2, "colSpan": 1}},
	}
}

func teacherIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	schedule := nestedObject(t, body, "schedule")
	raw, ok := schedule["teacherUserIds"].([]any)
	if !ok {
		t.Fatalf("expected teacherUserIds list, got %v", schedule["teacherUserIds"])
	}
	ids := make([]string, 0, len(raw))
	for _, value := range raw {
		ids = append(ids, value.(string))
	}
	return ids
}

func TestScheduleLifecycle(t *testing.T) {
	env := newTestApp(t)
	admin := env.registerAndLogin(t, "amy", "admin")
	teacher := env.registerAndLogin(t, "tom", "")
	outsider := env.registerAndLogin(t, "uma", "")

	roster := env.request(t, http.MethodPut, "/api/auth/teachers", admin, map[string]any{"teacherIds": []string{"tom"}})
	env.mustStatus(t, roster, http.StatusOK)

	created := env.request(t, http.MethodPost, "/api/schedules", admin, scheduleBody("Week 1", "Spring"))
	env.mustStatus(t, created, http.StatusCreated)
	if got := teacherIDs(t, created.body); !reflect.DeepEqual(got, []string{"", ""}) {
		t.Fatalf("expected two empty teacher slots, got %q", got)
	}

	forbidden := env.request(t, http.MethodPost, "/api/schedules", teacher, scheduleBody("Mine", "Mine"))
	env.mustStatus(t, forbidden, http.StatusForbidden)
	if forbidden.message() != "Only admins can do this." {
		t.Fatalf("unexpected message %q", forbidden.message())
	}

	sameSheet := env.request(t, http.MethodPost, "/api/schedules", admin, scheduleBody("Week 1", "Autumn"))
	env.mustStatus(t, sameSheet, http.StatusConflict)
	sameTitle := env.request(t, http.MethodPost, "/api/schedules", admin, scheduleBody("Week 2", "  SPRING "))
	env.mustStatus(t, sameTitle, http.StatusConflict)

	before := env.request(t, http.MethodGet, "/api/schedules", teacher, nil)
	env.mustStatus(t, before, http.StatusOK)
	if sheets := nestedList(t, before.body, "schedules"); len(sheets) != 0 {
		t.Fatalf("teacher should not see unassigned sheets, got %d", len(sheets))
	}

	notOnRoster := env.request(t, http.MethodPut, "/api/schedules/Week%201", admin, map[string]any{"teacherUserIds": []string{"uma", ""}})
	env.mustStatus(t, notOnRoster, http.StatusBadRequest)
	wrongLength := env.request(t, http.MethodPut, "/api/schedules/Week%201", admin, map[string]any{"teacherUserIds": []string{"tom"}})
	env.mustStatus(t, wrongLength, http.StatusBadRequest)

	assigned := env.request(t, http.MethodPut, "/api/schedules/Week%201", admin, map[string]any{"teacherUserIds": []string{"tom", ""}})
	env.mustStatus(t, assigned, http.StatusOK)

	visible := env.request(t, http.MethodGet, "/api/schedules", teacher, nil)
	if sheets := nestedList(t, visible.body, "schedules"); len(sheets) != 1 {
		t.Fatalf("expected teacher to see one sheet, got %d", len(sheets))
	}
	single := env.request(t, http.MethodGet, "/api/schedules/Week%201", teacher, nil)
	env.mustStatus(t, single, http.StatusOK)

	hidden := env.request(t, http.MethodGet, "/api/schedules/Week%201?owner=amy", outsider, nil)
	env.mustStatus(t, hidden, http.StatusForbidden)

	renamed := env.request(t, http.MethodPut, "/api/schedules/Week%201", admin, map[string]any{"title": "Spring v2"})
	env.mustStatus(t, renamed, http.StatusOK)
	if got := teacherIDs(t, renamed.body); !reflect.DeepEqual(got, []string{"tom", ""}) {
		t.Fatalf("partial update must keep teacher ids, got %q", got)
	}
	if title := nestedObject(t, renamed.body, "schedule")["title"]; title != "Spring v2" {
		t.Fatalf("expected new title, got %v", title)
	}

	teacherUpdate := env.request(t, http.MethodPut, "/api/schedules/Week%201?owner=amy", teacher, map[string]any{"title": "Hijack"})
	env.mustStatus(t, teacherUpdate, http.StatusForbidden)

	root := env.superadminToken(t)
	missingOwner := env.request(t, http.MethodPut, "/api/schedules/Week%201", root, map[string]any{"viewMode": "teacher"})
	env.mustStatus(t, missingOwner, http.StatusBadRequest)
	rootUpdate := env.request(t, http.MethodPut, "/api/schedules/Week%201?owner=amy", root, map[string]any{"viewMode": "teacher"})
	env.mustStatus(t, rootUpdate, http.StatusOK)
	if mode := nestedObject(t, rootUpdate.body, "schedule")["viewMode"]; mode != "teacher" {
		t.Fatalf("expected view mode teacher, got %v", mode)
	}

	all := env.request(t, http.MethodGet, "/api/schedules", root, nil)
	if sheets := nestedList(t, all.body, "schedules"); len(sheets) != 1 {
		t.Fatalf("expected superadmin to see one sheet, got %d", len(sheets))
	}

	deleted := env.request(t, http.MethodDelete, "/api/schedules/Week%201", admin, nil)
	env.mustStatus(t, deleted, http.StatusOK)
	again := env.request(t, http.MethodDelete, "/api/schedules/Week%201", admin, nil)
	env.mustStatus(t, again, http.StatusNotFound)
}

func TestScheduleListsAreScopedPerAdmin(t *testing.T) {
	env := newTestApp(t)
	first := env.registerAndLogin(t, "admin-one", "admin")
	second := env.registerAndLogin(t, "admin-two", "admin")

	env.mustStatus(t, env.request(t, http.MethodPost, "/api/schedules", first, scheduleBody("Shared", "Shared")), http.StatusCreated)
	env.mustStatus(t, env.request(t, http.MethodPost, "/api/schedules", second, scheduleBody("Shared", "Shared")), http.StatusCreated)

	listed := env.request(t, http.MethodGet, "/api/schedules", first, nil)
	sheets := nestedList(t, listed.body, "schedules")
	if len(sheets) != 1 || sheets[0].(map[string]any)["ownerId"] != "admin-one" {
		t.Fatalf("expected only admin-one's sheet, got %v", sheets)
	}

	deleteOther := env.request(t, http.MethodPut, "/api/schedules/Shared?owner=admin-two", first, map[string]any{"title": "Taken over"})
	env.mustStatus(t, deleteOther, http.StatusForbidden)

	root := env.superadminToken(t)
	filtered := env.request(t, http.MethodGet, "/api/schedules?owner=admin-two", root, nil)
	if sheets := nestedList(t, filtered.body, "schedules"); len(sheets) != 1 {
		t.Fatalf("expected owner filter to return one sheet, got %d", len(sheets))
	}
}

func TestScheduleRejectsInvalidLayout(t *testing.T) {
	env := newTestApp(t)
	admin := env.registerAndLogin(t, "lay", "admin")

	body := scheduleBody("Broken", "Broken")
	body["endTime"] = "08:00"
	response := env.request(t, http.MethodPost, "/api/schedules", admin, body)
	env.mustStatus(t, response, http.StatusBadRequest)
	if response.message() != "The schedule layout is invalid." {
		t.Fatalf("unexpected message %q", response.message())
	}
}
