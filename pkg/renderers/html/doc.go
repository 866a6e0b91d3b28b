// Package html renders wizard pages as server-side HTML documents.
//
// Every screen is one <form method="post">. Navigation, repeatable add and
// remove controls all post a named "action" value (see render.ParseAction),
// so the wizard works without client-side scripting. Field controls come from
// a components.Registry and can be overridden per field type, either by
// registering a different component or through theme partials keyed
// "forms.<type>".
package html
