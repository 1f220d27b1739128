// Package imou is a client for the Imou Life OpenAPI, the cloud service
// behind Imou cameras and other smart-home devices.
//
// The low level surface is Client, which owns the authenticated session
// (application credentials, signed requests, access token lifecycle) and
// exposes one method per vendor operation. The high level surface is
// Device and its entities (switches, sensors, selects, buttons), built
// from the abilities each device reports, plus Discover to enumerate the
// account's devices.
//
//	client := imou.New(appID, appSecret)
//	defer client.Close()
//
//	devices, err := imou.Discover(ctx, client)
//
// Errors are classified: AuthError for rejected credentials,
// TransportError for network level failures, APIError for failures the
// vendor reports inside an HTTP 200 envelope, and InvalidResponseError
// for payloads that do not match the documented shapes.
package imou
