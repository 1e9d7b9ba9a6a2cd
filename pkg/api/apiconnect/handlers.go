package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/pkg/api"
)

// AuthServiceHandler is implemented by the account service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	LoginWithDevice(context.Context, *connect.Request[api.DeviceLoginRequest]) (*connect.Response[api.AuthResponse], error)
	ContinueAsGuest(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.CurrentUserResponse], error)
	Logout(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.Empty], error)
	GetCurrentUser(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.CurrentUserResponse], error)
	ListRecentUsers(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.RecentUsersResponse], error)
	ForgetRecentUser(context.Context, *connect.Request[api.ForgetRecentUserRequest]) (*connect.Response[api.RecentUsersResponse], error)
	ResetPassword(context.Context, *connect.Request[api.ResetPasswordRequest]) (*connect.Response[api.Empty], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for AuthService.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, AuthServiceRegisterProcedure, svc.Register, opts)
	unary(r, AuthServiceLoginProcedure, svc.Login, opts)
	unary(r, AuthServiceLoginWithDeviceProcedure, svc.LoginWithDevice, opts)
	unary(r, AuthServiceContinueAsGuestProcedure, svc.ContinueAsGuest, opts)
	unary(r, AuthServiceLogoutProcedure, svc.Logout, opts)
	unary(r, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	unary(r, AuthServiceListRecentUsersProcedure, svc.ListRecentUsers, opts)
	unary(r, AuthServiceForgetRecentUserProcedure, svc.ForgetRecentUser, opts)
	unary(r, AuthServiceResetPasswordProcedure, svc.ResetPassword, opts)
	unary(r, AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts)
	return "/" + AuthServiceName + "/", r
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.GroupResponse], error)
	DuplicateGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error)
	AddMember(context.Context, *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.MemberRequest]) (*connect.Response[api.GroupResponse], error)
	ListMembers(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.MembersResponse], error)
	ForgetRecentGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.RecentsResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for GroupService.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	unary(r, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	unary(r, GroupServiceListGroupsProcedure, svc.ListGroups, opts)
	unary(r, GroupServiceRenameGroupProcedure, svc.RenameGroup, opts)
	unary(r, GroupServiceDuplicateGroupProcedure, svc.DuplicateGroup, opts)
	unary(r, GroupServiceAddMemberProcedure, svc.AddMember, opts)
	unary(r, GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	unary(r, GroupServiceListMembersProcedure, svc.ListMembers, opts)
	unary(r, GroupServiceForgetRecentGroupProcedure, svc.ForgetRecentGroup, opts)
	return "/" + GroupServiceName + "/", r
}

// SlideServiceHandler is implemented by the group slide editor service.
type SlideServiceHandler interface {
	ListSlides(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.SlidesResponse], error)
	CreateSlide(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.SlideResponse], error)
	DuplicateSlide(context.Context, *connect.Request[api.SlideRequest]) (*connect.Response[api.SlideResponse], error)
	AssignOwner(context.Context, *connect.Request[api.AssignOwnerRequest]) (*connect.Response[api.SlideResponse], error)
	SetStatus(context.Context, *connect.Request[api.SetStatusRequest]) (*connect.Response[api.SlideResponse], error)
	SetTitle(context.Context, *connect.Request[api.SetTitleRequest]) (*connect.Response[api.SlideResponse], error)
	SaveContent(context.Context, *connect.Request[api.SaveContentRequest]) (*connect.Response[api.SlideResponse], error)
	DeleteSlide(context.Context, *connect.Request[api.SlideRequest]) (*connect.Response[api.SlidesResponse], error)
	AddComment(context.Context, *connect.Request[api.AddCommentRequest]) (*connect.Response[api.CommentResponse], error)
	OpenSlide(context.Context, *connect.Request[api.SlideRequest]) (*connect.Response[api.HandoffResponse], error)
}

// NewSlideServiceHandler builds an HTTP handler for SlideService.
func NewSlideServiceHandler(svc SlideServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, SlideServiceListSlidesProcedure, svc.ListSlides, opts)
	unary(r, SlideServiceCreateSlideProcedure, svc.CreateSlide, opts)
	unary(r, SlideServiceDuplicateSlideProcedure, svc.DuplicateSlide, opts)
	unary(r, SlideServiceAssignOwnerProcedure, svc.AssignOwner, opts)
	unary(r, SlideServiceSetStatusProcedure, svc.SetStatus, opts)
	unary(r, SlideServiceSetTitleProcedure, svc.SetTitle, opts)
	unary(r, SlideServiceSaveContentProcedure, svc.SaveContent, opts)
	unary(r, SlideServiceDeleteSlideProcedure, svc.DeleteSlide, opts)
	unary(r, SlideServiceAddCommentProcedure, svc.AddComment, opts)
	unary(r, SlideServiceOpenSlideProcedure, svc.OpenSlide, opts)
	return "/" + SlideServiceName + "/", r
}

// RecentsServiceHandler is implemented by the recents service.
type RecentsServiceHandler interface {
	GetRecents(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.RecentsResponse], error)
	Touch(context.Context, *connect.Request[api.RecentRequest]) (*connect.Response[api.RecentsResponse], error)
	Forget(context.Context, *connect.Request[api.RecentRequest]) (*connect.Response[api.RecentsResponse], error)
	SetLastActiveGroup(context.Context, *connect.Request[api.LastActiveGroupRequest]) (*connect.Response[api.RecentsResponse], error)
}

// NewRecentsServiceHandler builds an HTTP handler for RecentsService.
func NewRecentsServiceHandler(svc RecentsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, RecentsServiceGetRecentsProcedure, svc.GetRecents, opts)
	unary(r, RecentsServiceTouchProcedure, svc.Touch, opts)
	unary(r, RecentsServiceForgetProcedure, svc.Forget, opts)
	unary(r, RecentsServiceSetLastActiveGroupProcedure, svc.SetLastActiveGroup, opts)
	return "/" + RecentsServiceName + "/", r
}

// TemplateServiceHandler is implemented by the template service.
type TemplateServiceHandler interface {
	ListTemplates(context.Context, *connect.Request[api.ListTemplatesRequest]) (*connect.Response[api.ListTemplatesResponse], error)
	CreateTemplate(context.Context, *connect.Request[api.CreateTemplateRequest]) (*connect.Response[api.TemplateResponse], error)
	UpdateTemplate(context.Context, *connect.Request[api.UpdateTemplateRequest]) (*connect.Response[api.TemplateResponse], error)
	UseTemplate(context.Context, *connect.Request[api.TemplateRequest]) (*connect.Response[api.TemplateResponse], error)
	RecentTemplates(context.Context, *connect.Request[api.RecentTemplatesRequest]) (*connect.Response[api.ListTemplatesResponse], error)
}

// NewTemplateServiceHandler builds an HTTP handler for TemplateService.
func NewTemplateServiceHandler(svc TemplateServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, TemplateServiceListTemplatesProcedure, svc.ListTemplates, opts)
	unary(r, TemplateServiceCreateTemplateProcedure, svc.CreateTemplate, opts)
	unary(r, TemplateServiceUpdateTemplateProcedure, svc.UpdateTemplate, opts)
	unary(r, TemplateServiceUseTemplateProcedure, svc.UseTemplate, opts)
	unary(r, TemplateServiceRecentTemplatesProcedure, svc.RecentTemplates, opts)
	return "/" + TemplateServiceName + "/", r
}

// PresentationServiceHandler is implemented by the standalone deck service.
type PresentationServiceHandler interface {
	List(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.ListPresentationsResponse], error)
	Get(context.Context, *connect.Request[api.PresentationRequest]) (*connect.Response[api.PresentationResponse], error)
	Save(context.Context, *connect.Request[api.SavePresentationRequest]) (*connect.Response[api.PresentationResponse], error)
	Rename(context.Context, *connect.Request[api.RenamePresentationRequest]) (*connect.Response[api.PresentationResponse], error)
	Duplicate(context.Context, *connect.Request[api.PresentationRequest]) (*connect.Response[api.PresentationResponse], error)
	Delete(context.Context, *connect.Request[api.PresentationRequest]) (*connect.Response[api.DeleteResponse], error)
	Open(context.Context, *connect.Request[api.PresentationRequest]) (*connect.Response[api.HandoffResponse], error)
	AddSlide(context.Context, *connect.Request[api.PresentationRequest]) (*connect.Response[api.DeckSlideResponse], error)
	DuplicateSlide(context.Context, *connect.Request[api.DeckSlideRequest]) (*connect.Response[api.DeckSlideResponse], error)
	UpdateSlide(context.Context, *connect.Request[api.UpdateDeckSlideRequest]) (*connect.Response[api.DeckSlideResponse], error)
	DeleteSlide(context.Context, *connect.Request[api.DeckSlideRequest]) (*connect.Response[api.PresentationResponse], error)
}

// NewPresentationServiceHandler builds an HTTP handler for PresentationService.
func NewPresentationServiceHandler(svc PresentationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, PresentationServiceListProcedure, svc.List, opts)
	unary(r, PresentationServiceGetProcedure, svc.Get, opts)
	unary(r, PresentationServiceSaveProcedure, svc.Save, opts)
	unary(r, PresentationServiceRenameProcedure, svc.Rename, opts)
	unary(r, PresentationServiceDuplicateProcedure, svc.Duplicate, opts)
	unary(r, PresentationServiceDeleteProcedure, svc.Delete, opts)
	unary(r, PresentationServiceOpenProcedure, svc.Open, opts)
	unary(r, PresentationServiceAddSlideProcedure, svc.AddSlide, opts)
	unary(r, PresentationServiceDuplicateSlideProcedure, svc.DuplicateSlide, opts)
	unary(r, PresentationServiceUpdateSlideProcedure, svc.UpdateSlide, opts)
	unary(r, PresentationServiceDeleteSlideProcedure, svc.DeleteSlide, opts)
	return "/" + PresentationServiceName + "/", r
}

// SearchServiceHandler is implemented by the search service.
type SearchServiceHandler interface {
	Search(context.Context, *connect.Request[api.SearchRequest]) (*connect.Response[api.SearchResponse], error)
}

// NewSearchServiceHandler builds an HTTP handler for SearchService.
func NewSearchServiceHandler(svc SearchServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	r := router{}
	unary(r, SearchServiceSearchProcedure, svc.Search, opts)
	return "/" + SearchServiceName + "/", r
}
