// Package apiconnect wires the slidemaker services to Connect handlers and
// clients using the JSON codec from package api.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/pkg/api"
)

// PackagePrefix is the common path prefix of every service.
const PackagePrefix = "/slidemaker.v1."

// Service names.
const (
	AuthServiceName         = "slidemaker.v1.AuthService"
	GroupServiceName        = "slidemaker.v1.GroupService"
	SlideServiceName        = "slidemaker.v1.SlideService"
	RecentsServiceName      = "slidemaker.v1.RecentsService"
	TemplateServiceName     = "slidemaker.v1.TemplateService"
	PresentationServiceName = "slidemaker.v1.PresentationService"
	SearchServiceName       = "slidemaker.v1.SearchService"
)

// Procedure paths.
const (
	AuthServiceRegisterProcedure         = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure            = "/" + AuthServiceName + "/Login"
	AuthServiceLoginWithDeviceProcedure  = "/" + AuthServiceName + "/LoginWithDevice"
	AuthServiceContinueAsGuestProcedure  = "/" + AuthServiceName + "/ContinueAsGuest"
	AuthServiceLogoutProcedure           = "/" + AuthServiceName + "/Logout"
	AuthServiceGetCurrentUserProcedure   = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceListRecentUsersProcedure  = "/" + AuthServiceName + "/ListRecentUsers"
	AuthServiceForgetRecentUserProcedure = "/" + AuthServiceName + "/ForgetRecentUser"
	AuthServiceResetPasswordProcedure    = "/" + AuthServiceName + "/ResetPassword"
	AuthServiceUpdateProfileProcedure    = "/" + AuthServiceName + "/UpdateProfile"

	GroupServiceCreateGroupProcedure       = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure          = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure        = "/" + GroupServiceName + "/ListGroups"
	GroupServiceRenameGroupProcedure       = "/" + GroupServiceName + "/RenameGroup"
	GroupServiceDuplicateGroupProcedure    = "/" + GroupServiceName + "/DuplicateGroup"
	GroupServiceAddMemberProcedure         = "/" + GroupServiceName + "/AddMember"
	GroupServiceRemoveMemberProcedure      = "/" + GroupServiceName + "/RemoveMember"
	GroupServiceListMembersProcedure       = "/" + GroupServiceName + "/ListMembers"
	GroupServiceForgetRecentGroupProcedure = "/" + GroupServiceName + "/ForgetRecentGroup"

	SlideServiceListSlidesProcedure     = "/" + SlideServiceName + "/ListSlides"
	SlideServiceCreateSlideProcedure    = "/" + SlideServiceName + "/CreateSlide"
	SlideServiceDuplicateSlideProcedure = "/" + SlideServiceName + "/DuplicateSlide"
	SlideServiceAssignOwnerProcedure    = "/" + SlideServiceName + "/AssignOwner"
	SlideServiceSetStatusProcedure      = "/" + SlideServiceName + "/SetStatus"
	SlideServiceSetTitleProcedure       = "/" + SlideServiceName + "/SetTitle"
	SlideServiceSaveContentProcedure    = "/" + SlideServiceName + "/SaveContent"
	SlideServiceDeleteSlideProcedure    = "/" + SlideServiceName + "/DeleteSlide"
	SlideServiceAddCommentProcedure     = "/" + SlideServiceName + "/AddComment"
	SlideServiceOpenSlideProcedure      = "/" + SlideServiceName + "/OpenSlide"

	RecentsServiceGetRecentsProcedure         = "/" + RecentsServiceName + "/GetRecents"
	RecentsServiceTouchProcedure              = "/" + RecentsServiceName + "/Touch"
	RecentsServiceForgetProcedure             = "/" + RecentsServiceName + "/Forget"
	RecentsServiceSetLastActiveGroupProcedure = "/" + RecentsServiceName + "/SetLastActiveGroup"

	TemplateServiceListTemplatesProcedure   = "/" + TemplateServiceName + "/ListTemplates"
	TemplateServiceCreateTemplateProcedure  = "/" + TemplateServiceName + "/CreateTemplate"
	TemplateServiceUpdateTemplateProcedure  = "/" + TemplateServiceName + "/UpdateTemplate"
	TemplateServiceUseTemplateProcedure     = "/" + TemplateServiceName + "/UseTemplate"
	TemplateServiceRecentTemplatesProcedure = "/" + TemplateServiceName + "/RecentTemplates"

	PresentationServiceListProcedure           = "/" + PresentationServiceName + "/List"
	PresentationServiceGetProcedure            = "/" + PresentationServiceName + "/Get"
	PresentationServiceSaveProcedure           = "/" + PresentationServiceName + "/Save"
	PresentationServiceRenameProcedure         = "/" + PresentationServiceName + "/Rename"
	PresentationServiceDuplicateProcedure      = "/" + PresentationServiceName + "/Duplicate"
	PresentationServiceDeleteProcedure         = "/" + PresentationServiceName + "/Delete"
	PresentationServiceOpenProcedure           = "/" + PresentationServiceName + "/Open"
	PresentationServiceAddSlideProcedure       = "/" + PresentationServiceName + "/AddSlide"
	PresentationServiceDuplicateSlideProcedure = "/" + PresentationServiceName + "/DuplicateSlide"
	PresentationServiceUpdateSlideProcedure    = "/" + PresentationServiceName + "/UpdateSlide"
	PresentationServiceDeleteSlideProcedure    = "/" + PresentationServiceName + "/DeleteSlide"

	SearchServiceSearchProcedure = "/" + SearchServiceName + "/Search"
)

// IsProcedure reports whether path belongs to one of the RPC services.
func IsProcedure(path string) bool {
	return strings.HasPrefix(path, PackagePrefix)
}

// router dispatches to the handler registered for the exact procedure path.
type router map[string]http.Handler

func (r router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func unary[Req, Res any](
	r router,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	r[procedure] = connect.NewUnaryHandler(procedure, fn, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

// Client calls procedures on a slidemaker server.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	opts       []connect.ClientOption
}

// NewClient creates a Client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...),
	}
}

// Invoke calls one unary procedure.
func Invoke[Req, Res any](ctx context.Context, c *Client, procedure string, req *connect.Request[Req]) (*connect.Response[Res], error) {
	return connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...).CallUnary(ctx, req)
}
