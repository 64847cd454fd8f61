// Package eventconfig builds the per-event-type Config the dispatch
// bootstrap uses to construct a queue, worker, and sink binding. Values
// come from, in increasing priority: built-in defaults, an optional JSON
// or YAML file (selected by extension), and an environment variable
// overlay of the form EVENTCHANNEL_<TYPE>_<FIELD>.
package eventconfig
