// Package schema defines the static step definitions that drive a wizard.
//
// A schema is an ordered list of steps; each step holds an ordered list of
// fields. Fields form a closed sum type (Input, Choice, Repeatable, Unknown)
// so renderers and validators switch on the concrete variant instead of
// probing optional properties. Documents are JSON or YAML and may be either a
// bare list of steps or an object carrying a title and the steps:
//
//	title: Onboarding
//	steps:
//	  - title: About you
//	    fields:
//	      - {name: name, label: Name, type: text, required: true}
//	      - {name: plan, label: Plan, type: select, options: [free, pro]}
//	  - title: Contacts
//	    fields:
//	      - name: contacts
//	        label: Contact
//	        type: repeatable
//	        fields:
//	          - {name: email, label: Email, type: text, required: true}
//
// Schemas are loaded once and never mutated; they are safe for concurrent
// readers.
package schema
