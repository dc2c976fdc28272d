// Package tools defines tool contracts, the registry, and the built-in tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: name -> definition, shared read-only by every persona.
//   - Built-ins: get_current_weather, get_weather_forecast, calculator, web_search.
//
// Handlers never return Go errors for expected failures; they return a
// human-readable "Error: <message>" string that is handed to the model as-is.
package tools
