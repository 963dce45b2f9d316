// Package testfixtures holds deterministic planner data and a controllable
// clock for tests across packages.
package testfixtures

import (
	"time"

	"github.com/example/study-planner/internal/records"
)

// referenceTime is Tuesday of the fixture week, before the first class.
var referenceTime = time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical "now" used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// WeekStart returns the Monday of the fixture week.
func WeekStart() time.Time {
	return time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
}

// Fixture event ids, as produced by the normalizer.
const (
	MidtermID    = "assignment_mid"
	ProjectID    = "assignment_pa3"
	ProblemSetID = "assignment_ps5"
	LabReportID  = "assignment_lab2"
	GymID        = "item_gym"
)

// Semester returns a small semester snapshot in UTC:
//
//   - cs101 meets Monday and Wednesday 09:00-10:30
//   - math201 meets Tuesday and Thursday 13:00-14:30
//   - phys151 has a Friday lab 10:00-12:00 and a Wednesday review
//     10:00-11:00 that overlaps cs101
//   - three pending assignments fall due during the week of March 4, 2024,
//     and a completed one was due the week before
//   - a personal gym item on Tuesday evening
//
// Seen from ReferenceTime the midterm ranks first with a score of 90.
func Semester() records.Snapshot {
	return records.Snapshot{
		Assignments: []records.AssignmentDef{
			{
				ID:         "pa3",
				Title:      "Programming Assignment 3",
				CourseID:   "cs101",
				CourseName: "Introduction to Computer Science",
				Type:       "project",
				Due:        "2024-03-08T23:59:00Z",
				Weight:     0.25,
			},
			{
				ID:         "ps5",
				Title:      "Problem Set 5",
				CourseID:   "math201",
				CourseName: "Calculus II",
				Type:       "homework",
				Due:        "2024-03-06T17:00:00Z",
				Weight:     0.05,
			},
			{
				ID:         "mid",
				Title:      "Physics Midterm",
				CourseID:   "phys151",
				CourseName: "Physics I",
				Type:       "exam",
				Due:        "2024-03-07T11:00:00Z",
				Weight:     0.3,
			},
			{
				ID:         "lab2",
				Title:      "Lab Report 2",
				CourseID:   "phys151",
				CourseName: "Physics I",
				Type:       "lab",
				Due:        "2024-02-28T23:59:00Z",
				Weight:     0.1,
				Completed:  true,
			},
		},
		Sessions: []records.SessionDef{
			{
				CourseID:    "phys151",
				CourseName:  "Physics I",
				Title:       "Midterm review",
				Location:    "Lab 3",
				SessionType: "review",
				Date:        "2024-03-06",
				Start:       "10:00",
				End:         "11:00",
			},
		},
		Courses: []records.CourseDef{
			{
				ID:       "cs101",
				Name:     "Introduction to Computer Science",
				Location: "Room 101",
				Meetings: []records.MeetingDef{{
					Days: []string{"monday", "wednesday"}, Start: "09:00", End: "10:30",
					Type: "lecture", StartsOn: "2024-01-15", EndsOn: "2024-05-10",
				}},
			},
			{
				ID:       "math201",
				Name:     "Calculus II",
				Location: "Hall A",
				Meetings: []records.MeetingDef{{
					Days: []string{"tuesday", "thursday"}, Start: "13:00", End: "14:30",
					Type: "lecture", StartsOn: "2024-01-15", EndsOn: "2024-05-10",
				}},
			},
			{
				ID:       "phys151",
				Name:     "Physics I",
				Location: "Lab 3",
				Meetings: []records.MeetingDef{{
					Days: []string{"friday"}, Start: "10:00", End: "12:00",
					Type: "lab", StartsOn: "2024-01-15", EndsOn: "2024-05-10",
				}},
			},
		},
		Holidays: []records.HolidayDef{
			{Date: "2024-03-29", LocalName: "Good Friday", Name: "Good Friday", CountryCode: "US"},
		},
		Items: []records.ItemDef{
			{
				ID:    "gym",
				Title: "Gym",
				Type:  "personal",
				Start: "2024-03-05T18:00",
				End:   "2024-03-05T19:00",
				Tags:  []string{"health"},
			},
		},
		Flags: map[string][]string{
			MidtermID: {"favorite"},
			ProjectID: {"saved"},
		},
	}
}

// SemesterSource returns Semester served from memory in UTC.
func SemesterSource() *records.Static {
	return records.NewStatic(Semester(), time.UTC)
}
