// Package server exposes stored prices and sync status over HTTP.
package server
