package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "teamboard.v1.Teamboard"

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// Method paths.
const (
	MethodPing             = "/teamboard.v1.Teamboard/Ping"
	MethodSignUp           = "/teamboard.v1.Teamboard/SignUp"
	MethodSignIn           = "/teamboard.v1.Teamboard/SignIn"
	MethodRefreshToken     = "/teamboard.v1.Teamboard/RefreshToken"
	MethodSignOut          = "/teamboard.v1.Teamboard/SignOut"
	MethodReauthenticate   = "/teamboard.v1.Teamboard/Reauthenticate"
	MethodUpdateEmail      = "/teamboard.v1.Teamboard/UpdateEmail"
	MethodUpdatePassword   = "/teamboard.v1.Teamboard/UpdatePassword"
	MethodGetProfile       = "/teamboard.v1.Teamboard/GetProfile"
	MethodSaveProfile      = "/teamboard.v1.Teamboard/SaveProfile"
	MethodListProfiles     = "/teamboard.v1.Teamboard/ListProfiles"
	MethodDeleteProfile    = "/teamboard.v1.Teamboard/DeleteProfile"
	MethodAddPost          = "/teamboard.v1.Teamboard/AddPost"
	MethodGetPost          = "/teamboard.v1.Teamboard/GetPost"
	MethodListPosts        = "/teamboard.v1.Teamboard/ListPosts"
	MethodLikePost         = "/teamboard.v1.Teamboard/LikePost"
	MethodAddTask          = "/teamboard.v1.Teamboard/AddTask"
	MethodGetTask          = "/teamboard.v1.Teamboard/GetTask"
	MethodListTasks        = "/teamboard.v1.Teamboard/ListTasks"
	MethodSetCompletion    = "/teamboard.v1.Teamboard/SetCompletion"
	MethodListCompletions  = "/teamboard.v1.Teamboard/ListCompletions"
	MethodDeleteCompletion = "/teamboard.v1.Teamboard/DeleteCompletion"
	MethodListEmails       = "/teamboard.v1.Teamboard/ListEmails"
	MethodAddEmail         = "/teamboard.v1.Teamboard/AddEmail"
	MethodRemoveEmail      = "/teamboard.v1.Teamboard/RemoveEmail"
	MethodIsEmailListed    = "/teamboard.v1.Teamboard/IsEmailListed"
	MethodCommit           = "/teamboard.v1.Teamboard/Commit"
	MethodAvatarUploadURL  = "/teamboard.v1.Teamboard/AvatarUploadURL"
	MethodAvatarURL        = "/teamboard.v1.Teamboard/AvatarURL"
	MethodWatchPosts       = "/teamboard.v1.Teamboard/WatchPosts"
	MethodWatchTasks       = "/teamboard.v1.Teamboard/WatchTasks"
	MethodWatchCompletions = "/teamboard.v1.Teamboard/WatchCompletions"
)

// TeamboardServer is implemented by the gRPC handlers.
type TeamboardServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	SignUp(context.Context, *Credentials) (*Session, error)
	SignIn(context.Context, *Credentials) (*Session, error)
	RefreshToken(context.Context, *RefreshRequest) (*Session, error)
	SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Reauthenticate(context.Context, *PasswordRequest) (*Session, error)
	UpdateEmail(context.Context, *EmailRequest) (*Session, error)
	UpdatePassword(context.Context, *PasswordRequest) (*Session, error)
	GetProfile(context.Context, *IDRequest) (*Profile, error)
	SaveProfile(context.Context, *SaveProfileRequest) (*Profile, error)
	ListProfiles(context.Context, *emptypb.Empty) (*ProfileList, error)
	DeleteProfile(context.Context, *IDRequest) (*emptypb.Empty, error)
	AddPost(context.Context, *AddPostRequest) (*Post, error)
	GetPost(context.Context, *IDRequest) (*Post, error)
	ListPosts(context.Context, *ListPostsRequest) (*PostList, error)
	LikePost(context.Context, *IDRequest) (*Post, error)
	AddTask(context.Context, *AddTaskRequest) (*Task, error)
	GetTask(context.Context, *IDRequest) (*Task, error)
	ListTasks(context.Context, *emptypb.Empty) (*TaskList, error)
	SetCompletion(context.Context, *SetCompletionRequest) (*Completion, error)
	ListCompletions(context.Context, *ListCompletionsRequest) (*CompletionList, error)
	DeleteCompletion(context.Context, *IDRequest) (*emptypb.Empty, error)
	ListEmails(context.Context, *EmailListRequest) (*EmailEntries, error)
	AddEmail(context.Context, *EmailListEntryRequest) (*EmailEntry, error)
	RemoveEmail(context.Context, *EmailListEntryRequest) (*emptypb.Empty, error)
	IsEmailListed(context.Context, *EmailListEntryRequest) (*BoolResponse, error)
	Commit(context.Context, *Batch) (*emptypb.Empty, error)
	AvatarUploadURL(context.Context, *emptypb.Empty) (*UploadURL, error)
	AvatarURL(context.Context, *IDRequest) (*URLResponse, error)
	WatchPosts(*emptypb.Empty, grpc.ServerStreamingServer[PostList]) error
	WatchTasks(*emptypb.Empty, grpc.ServerStreamingServer[TaskList]) error
	WatchCompletions(*emptypb.Empty, grpc.ServerStreamingServer[CompletionList]) error
}

// UnimplementedTeamboardServer answers every RPC with codes.Unimplemented.
// Embed it to implement only part of the service.
type UnimplementedTeamboardServer struct{}

func (UnimplementedTeamboardServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedTeamboardServer) SignUp(context.Context, *Credentials) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}

func (UnimplementedTeamboardServer) SignIn(context.Context, *Credentials) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}

func (UnimplementedTeamboardServer) RefreshToken(context.Context, *RefreshRequest) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}

func (UnimplementedTeamboardServer) SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}

func (UnimplementedTeamboardServer) Reauthenticate(context.Context, *PasswordRequest) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method Reauthenticate not implemented")
}

func (UnimplementedTeamboardServer) UpdateEmail(context.Context, *EmailRequest) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateEmail not implemented")
}

func (UnimplementedTeamboardServer) UpdatePassword(context.Context, *PasswordRequest) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePassword not implemented")
}

func (UnimplementedTeamboardServer) GetProfile(context.Context, *IDRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}

func (UnimplementedTeamboardServer) SaveProfile(context.Context, *SaveProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method SaveProfile not implemented")
}

func (UnimplementedTeamboardServer) ListProfiles(context.Context, *emptypb.Empty) (*ProfileList, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProfiles not implemented")
}

func (UnimplementedTeamboardServer) DeleteProfile(context.Context, *IDRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteProfile not implemented")
}

func (UnimplementedTeamboardServer) AddPost(context.Context, *AddPostRequest) (*Post, error) {
	return nil, status.Error(codes.Unimplemented, "method AddPost not implemented")
}

func (UnimplementedTeamboardServer) GetPost(context.Context, *IDRequest) (*Post, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPost not implemented")
}

func (UnimplementedTeamboardServer) ListPosts(context.Context, *ListPostsRequest) (*PostList, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPosts not implemented")
}

func (UnimplementedTeamboardServer) LikePost(context.Context, *IDRequest) (*Post, error) {
	return nil, status.Error(codes.Unimplemented, "method LikePost not implemented")
}

func (UnimplementedTeamboardServer) AddTask(context.Context, *AddTaskRequest) (*Task, error) {
	return nil, status.Error(codes.Unimplemented, "method AddTask not implemented")
}

func (UnimplementedTeamboardServer) GetTask(context.Context, *IDRequest) (*Task, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTask not implemented")
}

func (UnimplementedTeamboardServer) ListTasks(context.Context, *emptypb.Empty) (*TaskList, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTasks not implemented")
}

func (UnimplementedTeamboardServer) SetCompletion(context.Context, *SetCompletionRequest) (*Completion, error) {
	return nil, status.Error(codes.Unimplemented, "method SetCompletion not implemented")
}

func (UnimplementedTeamboardServer) ListCompletions(context.Context, *ListCompletionsRequest) (*CompletionList, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCompletions not implemented")
}

func (UnimplementedTeamboardServer) DeleteCompletion(context.Context, *IDRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteCompletion not implemented")
}

func (UnimplementedTeamboardServer) ListEmails(context.Context, *EmailListRequest) (*EmailEntries, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEmails not implemented")
}

func (UnimplementedTeamboardServer) AddEmail(context.Context, *EmailListEntryRequest) (*EmailEntry, error) {
	return nil, status.Error(codes.Unimplemented, "method AddEmail not implemented")
}

func (UnimplementedTeamboardServer) RemoveEmail(context.Context, *EmailListEntryRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveEmail not implemented")
}

func (UnimplementedTeamboardServer) IsEmailListed(context.Context, *EmailListEntryRequest) (*BoolResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IsEmailListed not implemented")
}

func (UnimplementedTeamboardServer) Commit(context.Context, *Batch) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Commit not implemented")
}

func (UnimplementedTeamboardServer) AvatarUploadURL(context.Context, *emptypb.Empty) (*UploadURL, error) {
	return nil, status.Error(codes.Unimplemented, "method AvatarUploadURL not implemented")
}

func (UnimplementedTeamboardServer) AvatarURL(context.Context, *IDRequest) (*URLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AvatarURL not implemented")
}

func (UnimplementedTeamboardServer) WatchPosts(*emptypb.Empty, grpc.ServerStreamingServer[PostList]) error {
	return status.Error(codes.Unimplemented, "method WatchPosts not implemented")
}

func (UnimplementedTeamboardServer) WatchTasks(*emptypb.Empty, grpc.ServerStreamingServer[TaskList]) error {
	return status.Error(codes.Unimplemented, "method WatchTasks not implemented")
}

func (UnimplementedTeamboardServer) WatchCompletions(*emptypb.Empty, grpc.ServerStreamingServer[CompletionList]) error {
	return status.Error(codes.Unimplemented, "method WatchCompletions not implemented")
}

// unary builds the MethodDesc for one request/response RPC.
func unary[Req, Resp any](name string, call func(TeamboardServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TeamboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TeamboardServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// watch builds the StreamDesc for one server-streaming RPC taking no arguments.
func watch[Resp any](name string, call func(TeamboardServer, *emptypb.Empty, grpc.ServerStreamingServer[Resp]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    name,
		ServerStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			in := new(emptypb.Empty)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(TeamboardServer), in, &grpc.GenericServerStream[emptypb.Empty, Resp]{ServerStream: stream})
		},
	}
}

// ServiceDesc describes the Teamboard service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TeamboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", TeamboardServer.Ping),
		unary("SignUp", TeamboardServer.SignUp),
		unary("SignIn", TeamboardServer.SignIn),
		unary("RefreshToken", TeamboardServer.RefreshToken),
		unary("SignOut", TeamboardServer.SignOut),
		unary("Reauthenticate", TeamboardServer.Reauthenticate),
		unary("UpdateEmail", TeamboardServer.UpdateEmail),
		unary("UpdatePassword", TeamboardServer.UpdatePassword),
		unary("GetProfile", TeamboardServer.GetProfile),
		unary("SaveProfile", TeamboardServer.SaveProfile),
		unary("ListProfiles", TeamboardServer.ListProfiles),
		unary("DeleteProfile", TeamboardServer.DeleteProfile),
		unary("AddPost", TeamboardServer.AddPost),
		unary("GetPost", TeamboardServer.GetPost),
		unary("ListPosts", TeamboardServer.ListPosts),
		unary("LikePost", TeamboardServer.LikePost),
		unary("AddTask", TeamboardServer.AddTask),
		unary("GetTask", TeamboardServer.GetTask),
		unary("ListTasks", TeamboardServer.ListTasks),
		unary("SetCompletion", TeamboardServer.SetCompletion),
		unary("ListCompletions", TeamboardServer.ListCompletions),
		unary("DeleteCompletion", TeamboardServer.DeleteCompletion),
		unary("ListEmails", TeamboardServer.ListEmails),
		unary("AddEmail", TeamboardServer.AddEmail),
		unary("RemoveEmail", TeamboardServer.RemoveEmail),
		unary("IsEmailListed", TeamboardServer.IsEmailListed),
		unary("Commit", TeamboardServer.Commit),
		unary("AvatarUploadURL", TeamboardServer.AvatarUploadURL),
		unary("AvatarURL", TeamboardServer.AvatarURL),
	},
	Streams: []grpc.StreamDesc{
		watch("WatchPosts", TeamboardServer.WatchPosts),
		watch("WatchTasks", TeamboardServer.WatchTasks),
		watch("WatchCompletions", TeamboardServer.WatchCompletions),
	},
	Metadata: "teamboard.v1",
}

// RegisterTeamboardServer registers srv on s.
func RegisterTeamboardServer(s grpc.ServiceRegistrar, srv TeamboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}
