// Package sdk is a Go client for item collections and filtering sessions kept in
// Valkey or Redis, so that sessions survive process restarts.
//
//	client, _ := sdk.New(ctx,
//	    sdk.WithValkey("localhost:6379", ""),
//	    sdk.WithView("shop", sdk.ViewDefinition{
//	        Filter: &sdk.FilterDef{Grouping: true, Mode: "multi", Groups: []sdk.GroupDef{
//	            {ID: "color", Buttons: []string{"*", ".red", ".blue"}},
//	        }},
//	        Sort:  &sdk.SortDef{Options: []sdk.SortOptionDef{{By: ".price, number", Ascending: true}}},
//	        Count: &sdk.CountDef{Format: "n of N"},
//	    }),
//	)
//	defer client.Close()
//
//	_, _, _ = client.Collections().Put(ctx, "shop", items)
//	s, _ := client.Sessions().Create(ctx, "shop", "shop")
//	s, _, _ = client.Sessions().Click(ctx, s.ID, "color", ".red")
//	s, _ = client.Sessions().Sort(ctx, s.ID, ".price, number", true)
//
// For a purely in-process engine use package itemfilter instead.
package sdk
