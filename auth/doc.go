/*
Package auth is for authentication and authorization. It contains database interfaces (DBGroup, DBUser), core types (Group, User) and the glue between them.

Groups

A group is a plain set of users. Groups back two things: the manager set of an
organisation (each organisation owns one managers group) and site-wide
capabilities (moderation, administration), which are granted to groups through
capability rules.
*/
package auth
