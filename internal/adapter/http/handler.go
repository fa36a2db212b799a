package http

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Services bundles the application services exposed over HTTP.
type Services struct {
	Auth        *app.AuthService
	Directory   *app.DirectoryService
	Members     *app.MemberService
	Allocations *app.AllocationService
	Complaints  *app.ComplaintService
	Visitors    *app.VisitorService
	Bills       *app.BillService
	Notices     *app.NoticeService
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svcs Services) {
	registerAuth(api, svcs.Auth)
	registerDirectory(api, svcs.Directory)
	registerMembers(api, svcs.Members)
	registerAllocations(api, svcs.Allocations)
	registerComplaints(api, svcs.Complaints)
	registerVisitors(api, svcs.Visitors)
	registerBills(api, svcs.Bills)
	registerNotices(api, svcs.Notices)
}

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func formatNullTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
