// Package resiliency classifies sink failures as transient or permanent
// and supplies the default exponential backoff retry schedule a Worker
// wraps its publish calls in. A caller may inject its own Policy in
// place of the default (see eventconfig.Config.ResiliencyPolicy).
package resiliency
