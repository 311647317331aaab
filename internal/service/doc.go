// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the stores
// defined in internal/store to fulfill application features.
//
// Key components:
//
//   - UserService: the user directory. Resolves bearer tokens to users,
//     registers accounts and authenticates logins.
//   - TwitService: twit use cases. Every mutation goes through a single
//     ownership predicate (CheckOwnership) and runs in a transaction that
//     locks the twit row.
//
// Services receive dependencies through constructor injection and depend on
// store interfaces, never on a specific database implementation.
package service
