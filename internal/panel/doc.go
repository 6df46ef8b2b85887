// Package panel provides typed calls for the panel's feature screens.
//
// Every call goes through the request gateway, so failures have already been
// shown to the user by the time a method returns gateway.ErrReported. A
// mutation the server answers with {"success": false} returns
// gateway.ErrRejected, which callers report themselves.
package panel
