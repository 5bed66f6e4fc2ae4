// Package components defines the ECS components carried by every organism entity.
//
// An organism is an ark entity with three components: Organism (identity and
// species), Vitals (age, hunger, aliveness) and Location (optional field cell).
package components
